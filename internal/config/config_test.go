package config

import (
	"os"
	"path/filepath"
	"testing"

	. "gopkg.in/check.v1"
)

func Test(t *testing.T) { TestingT(t) }

type ConfigSuite struct {
	config Config
}

var _ = Suite(&ConfigSuite{})

func (s *ConfigSuite) SetUpTest(c *C) {
	s.config = Default
}

func writeFile(c *C, name, content string) string {
	filename := filepath.Join(c.MkDir(), name)
	c.Assert(os.WriteFile(filename, []byte(content), 0644), IsNil)
	return filename
}

func (s *ConfigSuite) TestLoadJSON(c *C) {
	filename := writeFile(c, "rangecoder.conf", `{
  // comments are allowed
  "logLevel": "debug",
  "logFormat": "json",
  "bufferSize": 8192,
}`)

	c.Assert(LoadConfig(filename, &s.config), IsNil)
	c.Check(s.config.LogLevel, Equals, "debug")
	c.Check(s.config.LogFormat, Equals, "json")
	c.Check(s.config.BufferSize, Equals, 8192)
}

func (s *ConfigSuite) TestLoadYAML(c *C) {
	filename := writeFile(c, "rangecoder.yaml", "log_level: warn\nbuffer_size: 4096\n")

	c.Assert(LoadConfig(filename, &s.config), IsNil)
	c.Check(s.config.LogLevel, Equals, "warn")
	c.Check(s.config.LogFormat, Equals, "default")
	c.Check(s.config.BufferSize, Equals, 4096)
}

func (s *ConfigSuite) TestLoadInvalid(c *C) {
	for _, t := range []struct {
		content string
		err     string
	}{
		{`{"bufferSize": 100}`, "bufferSize 100 is below the minimum of 4096"},
		{`{"logFormat": "xml"}`, `unknown logFormat "xml"`},
		{`{"logLevel": `, "invalid config file .*"},
	} {
		s.config = Default
		filename := writeFile(c, "rangecoder.conf", t.content)
		c.Check(LoadConfig(filename, &s.config), ErrorMatches, t.err)
	}
}

func (s *ConfigSuite) TestLoadInvalidKeepsConfig(c *C) {
	s.config.LogLevel = "warn"
	filename := writeFile(c, "rangecoder.conf", `{"logLevel": "trace", "bufferSize": 100}`)

	c.Check(LoadConfig(filename, &s.config), NotNil)
	c.Check(s.config, DeepEquals, Config{LogLevel: "warn", LogFormat: "default", BufferSize: DefaultBufferSize})
}

func (s *ConfigSuite) TestFind(c *C) {
	filename := writeFile(c, "rangecoder.conf", `{"logLevel": "error"}`)

	config, err := Find(filename)
	c.Assert(err, IsNil)
	c.Check(config.LogLevel, Equals, "error")
	c.Check(config.BufferSize, Equals, DefaultBufferSize)

	_, err = Find(filepath.Join(c.MkDir(), "missing.conf"))
	c.Check(os.IsNotExist(err), Equals, true)
}

func (s *ConfigSuite) TestDefaultLocations(c *C) {
	locations := DefaultLocations()
	c.Assert(len(locations) > 0, Equals, true)
	c.Check(locations[len(locations)-1], Equals, "/etc/rangecoder.conf")
}
