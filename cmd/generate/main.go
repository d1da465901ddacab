package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/rxtech-lab/argo-signals/internal/engine"
	"github.com/rxtech-lab/argo-signals/internal/rule"
	"gopkg.in/yaml.v2"
)

// writeSchemaAndSample writes a JSON schema next to a sample yaml document
// carrying the yaml-language-server header. The sample is only written when
// absent so local edits survive regeneration.
func writeSchemaAndSample(schemaJSON string, sample any, name string) error {
	schemaName := name + ".json"
	schemaPath := filepath.Join("./config", schemaName)
	samplePath := filepath.Join("./config", name+".yaml")

	if err := os.MkdirAll(filepath.Dir(schemaPath), 0755); err != nil {
		return err
	}

	if err := os.WriteFile(schemaPath, []byte(schemaJSON), 0644); err != nil {
		return err
	}

	if _, err := os.Stat(samplePath); os.IsNotExist(err) {
		yamlBytes, err := yaml.Marshal(sample)
		if err != nil {
			return err
		}

		yamlBytes = append([]byte("# yaml-language-server: $schema="+schemaName+"\n"), yamlBytes...)

		if err := os.WriteFile(samplePath, yamlBytes, 0644); err != nil {
			return err
		}

		log.Printf("Sample successfully generated at %s", samplePath)
	}

	log.Printf("Schema successfully generated at %s", schemaPath)

	return nil
}

func main() {
	config := engine.EmptyConfig()

	configSchema, err := config.GenerateSchemaJSON()
	if err != nil {
		log.Fatalf("Failed to generate config schema: %v", err)
	}

	if err := writeSchemaAndSample(configSchema, config, "signal-engine-config"); err != nil {
		log.Fatalf("Failed to write config schema: %v", err)
	}

	rules := rule.DefaultRulesFile()

	rulesSchema, err := rules.GenerateSchemaJSON()
	if err != nil {
		log.Fatalf("Failed to generate rules schema: %v", err)
	}

	if err := writeSchemaAndSample(rulesSchema, rules, "signal-rules"); err != nil {
		log.Fatalf("Failed to write rules schema: %v", err)
	}
}
