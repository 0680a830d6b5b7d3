package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/recibos-extractor/internal/common"
	"github.com/joseph-ayodele/recibos-extractor/internal/entity"
)

// recordsSchema describes the JSON array of receipt records.
var recordsSchema = map[string]any{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type":    "array",
	"items": map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"produtos"},
		"properties": map[string]any{
			"numero":   map[string]any{"type": "string"},
			"vendedor": map[string]any{"type": "string"},
			"cliente":  map[string]any{"type": "string"},
			"produtos": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []string{"descricao", "quantidade", "valor_unitario"},
					"properties": map[string]any{
						"descricao":      map[string]any{"type": "string"},
						"quantidade":     map[string]any{"type": "string"},
						"valor_unitario": map[string]any{"type": "string"},
					},
					"anyOf": []any{
						map[string]any{"properties": map[string]any{"quantidade": map[string]any{"pattern": `\d`}}},
						map[string]any{"properties": map[string]any{"valor_unitario": map[string]any{"pattern": `\d`}}},
					},
				},
			},
		},
	},
}

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		b, err := json.Marshal(recordsSchema)
		if err != nil {
			compileErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("recibos.json", bytes.NewReader(b)); err != nil {
			compileErr = fmt.Errorf("add schema: %w", err)
			return
		}
		compiledSchema, compileErr = compiler.Compile("recibos.json")
	})
	return compiledSchema, compileErr
}

// ValidateRecordsJSON checks data against the records schema.
func ValidateRecordsJSON(data []byte) error {
	sch, err := schema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", errors.Join(common.ErrValidation, err))
	}
	return nil
}

// RecordsJSON renders records as indented JSON and validates the result.
func (s *Service) RecordsJSON(records []entity.ReceiptRecord) ([]byte, error) {
	out := make([]entity.ReceiptRecord, len(records))
	copy(out, records)
	for i := range out {
		if out[i].Products == nil {
			out[i].Products = []entity.ProductLine{}
		}
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, common.NewAppError(common.CodeExport, "marshal records", err)
	}
	if err := ValidateRecordsJSON(b); err != nil {
		return nil, common.NewAppError(common.CodeExport, "validate records", err)
	}
	s.logger.Info("export.json.ok", "records", len(records), "bytes", len(b))
	return b, nil
}
