package http

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/swaggo/swag"
)

//go:embed openapi.yaml
var openAPIDocument []byte

var (
	swaggerOnce sync.Once
	swaggerSpec *openapi3.T
	swaggerErr  error
)

// GetSwagger returns the parsed and validated API description.
func GetSwagger() (*openapi3.T, error) {
	swaggerOnce.Do(func() {
		loader := openapi3.NewLoader()
		doc, err := loader.LoadFromData(openAPIDocument)
		if err != nil {
			swaggerErr = fmt.Errorf("error loading openapi document: %w", err)
			return
		}
		if err := doc.Validate(loader.Context); err != nil {
			swaggerErr = fmt.Errorf("openapi document is invalid: %w", err)
			return
		}
		swaggerSpec = doc
	})
	return swaggerSpec, swaggerErr
}

// swaggerDoc feeds echo-swagger's doc.json from the embedded document.
type swaggerDoc struct {
	json string
}

func (d swaggerDoc) ReadDoc() string {
	return d.json
}

var registerOnce sync.Once

// registerSwagger makes the document the one swag serves under swag.Name.
func registerSwagger() error {
	doc, err := GetSwagger()
	if err != nil {
		return err
	}

	var regErr error
	registerOnce.Do(func() {
		raw, err := json.Marshal(doc)
		if err != nil {
			regErr = err
			return
		}
		swag.Register(swag.Name, swaggerDoc{json: string(raw)})
	})
	return regErr
}
