package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// seedSchema validates *.seed.json files: a topic plus its records,
// authored as one bulk file per topic.
const seedSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["topic", "records"],
	"additionalProperties": false,
	"properties": {
		"topic": {"type": "string", "minLength": 1},
		"records": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["id", "question", "answer"],
				"additionalProperties": false,
				"properties": {
					"id": {"type": "string", "minLength": 1},
					"difficulty": {"enum": ["beginner", "intermediate", "advanced"]},
					"question": {"type": "string", "minLength": 1},
					"answer": {"type": "string", "minLength": 1},
					"followUps": {
						"type": "array",
						"items": {
							"type": "object",
							"required": ["question", "answer"],
							"additionalProperties": false,
							"properties": {
								"question": {"type": "string", "minLength": 1},
								"answer": {"type": "string", "minLength": 1}
							}
						}
					},
					"codeSample": {"type": "string"}
				}
			}
		}
	}
}`

var seedSchemaLoader = gojsonschema.NewStringLoader(seedSchema)

type seedFile struct {
	Topic   string     `json:"topic"`
	Records []QARecord `json:"records"`
}

// loadSeed parses a *.seed.json bulk file. The file is validated
// against the seed schema before any record is accepted.
func (c *Corpus) loadSeed(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	result, err := gojsonschema.Validate(seedSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("validate seed %s: %w", path, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("seed %s is invalid: %s", path, strings.Join(msgs, "; "))
	}

	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("parse seed %s: %w", path, err)
	}

	for _, rec := range seed.Records {
		rec.Topic = Topic(seed.Topic)
		if err := c.add(rec, path); err != nil {
			return err
		}
	}
	return nil
}
