package protocol

import (
	"bytes"

	"github.com/renato0307/duet/internal/domain"
	"github.com/renato0307/duet/internal/logging"
)

type lineParser func(sessionID string, line []byte) []domain.Event

var dialects = map[domain.Dialect]lineParser{
	domain.DialectClaude:   parseClaude,
	domain.DialectCodex:    parseCodex,
	domain.DialectGemini:   parseGemini,
	domain.DialectOpenCode: parseOpenCode,
}

// ParseStreamLine translates one line of streaming JSON output.
// Lines that are not JSON objects or records the dialect does not know yield
// no events; agents interleave plain diagnostics with their records.
func ParseStreamLine(dialect domain.Dialect, sessionID string, line []byte) []domain.Event {
	parse, ok := dialects[dialect]
	if !ok {
		return nil
	}

	line = bytes.TrimSpace(line)
	if len(line) == 0 || line[0] != '{' {
		return nil
	}

	events := parse(sessionID, line)
	if events == nil {
		logging.Logger.Debug("Ignoring stream line", "session_id", sessionID, "dialect", dialect, "size", len(line))
	}
	return events
}
