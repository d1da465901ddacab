package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"github.com/stretchr/testify/suite"
)

const validConfigYAML = `
snapshot_path: signals.db
rules_path: rules.yaml
derived_window_minutes: 30
timeframe:
  period: 1y
  interval: 1d
instruments:
  - AAPL
  - MSFT
provider: polygon
`

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) TestParseConfig() {
	config, err := ParseConfig([]byte(validConfigYAML))
	suite.Require().NoError(err)

	suite.Equal("signals.db", config.SnapshotPath)
	suite.Equal(30, config.DerivedWindowMinutes)
	suite.Equal("1y", config.Timeframe.Period)
	suite.Equal([]string{"AAPL", "MSFT"}, config.Instruments)
	suite.Equal("polygon", config.Provider)
}

func (suite *ConfigTestSuite) TestLoadConfigFromDisk() {
	path := filepath.Join(suite.T().TempDir(), "config.yaml")
	suite.Require().NoError(os.WriteFile(path, []byte(validConfigYAML), 0644))

	config, err := LoadConfig(path)
	suite.Require().NoError(err)
	suite.Equal("rules.yaml", config.RulesPath)
}

func (suite *ConfigTestSuite) TestLoadConfigMissingFile() {
	_, err := LoadConfig(filepath.Join(suite.T().TempDir(), "absent.yaml"))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestEmptyUniverseRejected() {
	_, err := ParseConfig([]byte(`
snapshot_path: signals.db
rules_path: rules.yaml
timeframe:
  period: 1y
  interval: 1d
instruments: []
provider: polygon
`))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestMissingTimeframeRejected() {
	_, err := ParseConfig([]byte(`
snapshot_path: signals.db
rules_path: rules.yaml
instruments: [AAPL]
provider: polygon
`))
	suite.Error(err)
}

func (suite *ConfigTestSuite) TestMalformedYAMLRejected() {
	_, err := ParseConfig([]byte("snapshot_path: [broken"))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestGenerateSchema() {
	config := EmptyConfig()

	schemaJSON, err := config.GenerateSchemaJSON()
	suite.Require().NoError(err)

	suite.Contains(schemaJSON, "signal-engine-config")
	suite.Contains(schemaJSON, "snapshot_path")
	suite.Contains(schemaJSON, "instruments")
	suite.Contains(schemaJSON, "draft-07")
}

func (suite *ConfigTestSuite) TestTestConfigIsValid() {
	config := TestConfig("AAPL")
	suite.NoError(config.Validate())
	suite.Equal(":memory:", config.SnapshotPath)
}
