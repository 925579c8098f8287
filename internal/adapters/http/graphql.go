package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/pinmap/internal/core/domain"
)

func pinFields(p domain.Pin) map[string]interface{} {
	return map[string]interface{}{
		"latitude":  p.Latitude,
		"longitude": p.Longitude,
		"memo":      p.Memo,
	}
}

func entryFields(entries []domain.PinEntry) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(entries))
	for _, e := range entries {
		m := pinFields(e.Pin)
		m["id"] = strconv.FormatUint(uint64(e.ID), 10)
		out = append(out, m)
	}
	return out
}

// buildSchema creates the GraphQL schema wired to the pin service.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	// IDs are exposed as strings since they are unsigned 64-bit.
	pinType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Pin",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.ID},
			"latitude":  &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
			"longitude": &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
			"memo":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	floatArg := &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"pins": &graphql.Field{
				Type:        graphql.NewList(pinType),
				Description: "List all pins ordered by id",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					pins, err := deps.Pins.List(p.Context)
					if err != nil {
						return nil, err
					}
					return entryFields(pins), nil
				},
			},
			"pin": &graphql.Field{
				Type:        pinType,
				Description: "Get a pin by id; null when unknown",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					raw, _ := p.Args["id"].(string)
					id, err := strconv.ParseUint(raw, 10, 64)
					if err != nil {
						return nil, errors.New("id must be an unsigned integer")
					}
					pin, err := deps.Pins.GetByID(p.Context, domain.PinID(id))
					if errors.Is(err, domain.ErrNotFound) {
						return nil, nil
					}
					if err != nil {
						return nil, err
					}
					m := pinFields(*pin)
					m["id"] = raw
					return m, nil
				},
			},
			"pinsInRange": &graphql.Field{
				Type:        graphql.NewList(pinType),
				Description: "Pins inside a lat/lng box, edges inclusive",
				Args: graphql.FieldConfigArgument{
					"latMin": floatArg,
					"latMax": floatArg,
					"lngMin": floatArg,
					"lngMax": floatArg,
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					latMin, _ := p.Args["latMin"].(float64)
					latMax, _ := p.Args["latMax"].(float64)
					lngMin, _ := p.Args["lngMin"].(float64)
					lngMax, _ := p.Args["lngMax"].(float64)
					pins, err := deps.Pins.InRange(p.Context, latMin, latMax, lngMin, lngMax)
					if err != nil {
						return nil, err
					}
					return entryFields(pins), nil
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createPin": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.ID),
				Description: "Store a pin and return its id",
				Args: graphql.FieldConfigArgument{
					"latitude":  floatArg,
					"longitude": floatArg,
					"memo":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat, _ := p.Args["latitude"].(float64)
					lng, _ := p.Args["longitude"].(float64)
					memo, _ := p.Args["memo"].(string)
					id, err := deps.Pins.Create(p.Context, lat, lng, memo)
					if err != nil {
						return nil, err
					}
					return strconv.FormatUint(uint64(id), 10), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})
		return c.JSON(result)
	}
}
