package http

import (
	"context"
	_ "embed"
	"errors"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/labstack/echo/v4"
)

//go:embed openapi.yaml
var openAPIDocument []byte

// OpenAPIDocument returns the raw API description served at /openapi.yaml.
func OpenAPIDocument() []byte {
	return openAPIDocument
}

// LoadOpenAPI parses and validates the embedded API description.
func LoadOpenAPI(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openAPIDocument)
	if err != nil {
		return nil, err
	}
	if err = doc.Validate(ctx); err != nil {
		return nil, err
	}
	return doc, nil
}

// RequestValidator checks requests for documented routes against the API
// description. Undocumented paths such as /metrics pass through untouched.
// Authentication is left to the route middleware.
func RequestValidator(doc *openapi3.T) (echo.MiddlewareFunc, error) {
	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, err
	}

	options := &openapi3filter.Options{
		AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
		MultiError:         false,
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			route, pathParams, findErr := router.FindRoute(req)
			if findErr != nil {
				if errors.Is(findErr, routers.ErrMethodNotAllowed) {
					return echo.NewHTTPError(http.StatusMethodNotAllowed, "method not allowed")
				}
				return next(c)
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    req,
				PathParams: pathParams,
				Route:      route,
				Options:    options,
			}
			if validateErr := openapi3filter.ValidateRequest(req.Context(), input); validateErr != nil {
				return echo.NewHTTPError(http.StatusBadRequest, validationMessage(validateErr))
			}
			return next(c)
		}
	}, nil
}

func validationMessage(err error) string {
	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.Parameter != nil {
			return "invalid parameter " + reqErr.Parameter.Name + ": " + reqErr.Reason + causeSuffix(reqErr.Err)
		}
		if reqErr.RequestBody != nil {
			return "invalid request body" + causeSuffix(reqErr.Err)
		}
	}
	return err.Error()
}

func causeSuffix(err error) string {
	if err == nil {
		return ""
	}
	return ": " + err.Error()
}
