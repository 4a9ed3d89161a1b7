package swagger

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

// SpecPath is where the router serves the OpenAPI document.
const SpecPath = "/openapi.yml"

// Handler serves Swagger UI pointed at the embedded API description.
func Handler() http.Handler {
	return httpSwagger.Handler(
		httpSwagger.URL(SpecPath),
		httpSwagger.DocExpansion("list"),
	)
}
