package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	. "gopkg.in/check.v1"
)

func Test(t *testing.T) { TestingT(t) }

type LoggingSuite struct {
	origLogger zerolog.Logger
}

var _ = Suite(&LoggingSuite{})

func (s *LoggingSuite) SetUpTest(c *C) {
	s.origLogger = log.Logger
}

func (s *LoggingSuite) TearDownTest(c *C) {
	log.Logger = s.origLogger
}

func (s *LoggingSuite) TestJSONLogger(c *C) {
	var buf bytes.Buffer
	Setup("json", "info", &buf)

	log.Debug().Msg("hidden")
	log.Info().Uint32("range", 0xFFFFFFFF).Msg("decoder primed")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	c.Assert(lines, HasLen, 1)

	var entry map[string]interface{}
	c.Assert(json.Unmarshal([]byte(lines[0]), &entry), IsNil)
	c.Check(entry["message"], Equals, "decoder primed")
	c.Check(entry["level"], Equals, "info")
	c.Check(entry["range"], Equals, float64(0xFFFFFFFF))
	c.Check(entry["time"], NotNil)
}

func (s *LoggingSuite) TestConsoleLogger(c *C) {
	var buf bytes.Buffer
	Setup("default", "warning", &buf)

	log.Info().Msg("hidden")
	log.Warn().Msg("volume missing")

	c.Check(strings.Contains(buf.String(), "hidden"), Equals, false)
	c.Check(strings.Contains(buf.String(), "volume missing"), Equals, true)
}

func (s *LoggingSuite) TestGetLogLevelOrDebug(c *C) {
	for levelStr, expected := range map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"INFO":    zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"Warn":    zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"trace":   zerolog.TraceLevel,
	} {
		c.Check(GetLogLevelOrDebug(levelStr), Equals, expected, Commentf("level %s", levelStr))
	}

	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf).Level(zerolog.TraceLevel)
	c.Check(GetLogLevelOrDebug("verbose"), Equals, zerolog.DebugLevel)
	c.Check(strings.Contains(buf.String(), "Unknown log level 'verbose'"), Equals, true)
}
