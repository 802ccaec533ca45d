package inventory

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"

	"MiniInventory/pkg/kit"
)

// APIDocPath is where the API description is published.
const APIDocPath = "/apispec_1.json"

//go:embed openapi.yaml
var apiDocYAML []byte

func LoadAPIDoc(ctx context.Context) (*openapi3.T, error) {
	doc, err := openapi3.NewLoader().LoadFromData(apiDocYAML)
	if err != nil {
		return nil, fmt.Errorf("load api doc: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid api doc: %w", err)
	}
	return doc, nil
}

func APIDocHandler(doc *openapi3.T) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		kit.WriteJSON(w, http.StatusOK, doc)
	}
}
