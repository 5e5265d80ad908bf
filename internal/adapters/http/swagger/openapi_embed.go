package swagger

import _ "embed"

// OpenAPI is the description of the assessment service contract the client
// speaks.
//
//go:embed openapi.yaml
var OpenAPI []byte
