package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/core/domain"
	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/core/usecases"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	stationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Station",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.String},
			"code":     &graphql.Field{Type: graphql.String},
			"name":     &graphql.Field{Type: graphql.String},
			"zone":     &graphql.Field{Type: graphql.String},
			"category": &graphql.Field{Type: graphql.String},
			"location": &graphql.Field{Type: geoPointType},
			"distance": &graphql.Field{Type: graphql.Float},
		},
	})

	triggerType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SceneTrigger",
		Fields: graphql.Fields{
			"radius_meters": &graphql.Field{Type: graphql.Float},
			"min_zoom":      &graphql.Field{Type: graphql.Float},
			"max_zoom":      &graphql.Field{Type: graphql.Float},
		},
	})

	sceneType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Scene",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.String},
			"name":     &graphql.Field{Type: graphql.String},
			"location": &graphql.Field{Type: geoPointType},
			"trigger":  &graphql.Field{Type: triggerType},
		},
	})

	colorType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RGB",
		Fields: graphql.Fields{
			"r": &graphql.Field{Type: graphql.Int},
			"g": &graphql.Field{Type: graphql.Int},
			"b": &graphql.Field{Type: graphql.Int},
		},
	})

	zoomLevelType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ZoomLevel",
		Fields: graphql.Fields{
			"level":   &graphql.Field{Type: graphql.Float},
			"area_km": &graphql.Field{Type: graphql.Int},
			"name":    &graphql.Field{Type: graphql.String},
			"color":   &graphql.Field{Type: colorType},
		},
	})

	classificationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ZoomClassification",
		Fields: graphql.Fields{
			"level":          &graphql.Field{Type: graphql.Float},
			"area_km":        &graphql.Field{Type: graphql.Int},
			"name":           &graphql.Field{Type: graphql.String},
			"actual_area_km": &graphql.Field{Type: graphql.Int},
			"area_delta_km":  &graphql.Field{Type: graphql.Int},
		},
	})

	viewportType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Viewport",
		Fields: graphql.Fields{
			"center_lat":    &graphql.Field{Type: graphql.Float},
			"center_lon":    &graphql.Field{Type: graphql.Float},
			"scale":         &graphql.Field{Type: graphql.Float},
			"zoom_distance": &graphql.Field{Type: graphql.Float},
			"width":         &graphql.Field{Type: graphql.Float},
			"height":        &graphql.Field{Type: graphql.Float},
		},
	})

	tripType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Trip",
		Fields: graphql.Fields{
			"source":      &graphql.Field{Type: geoPointType},
			"destination": &graphql.Field{Type: geoPointType},
			"speed":       &graphql.Field{Type: graphql.Float},
			"status":      &graphql.Field{Type: graphql.String},
			"progress":    &graphql.Field{Type: graphql.Float},
			"position":    &graphql.Field{Type: geoPointType},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"stations": &graphql.Field{
				Type:        graphql.NewList(stationType),
				Description: "List stations (paginated)",
				Args: graphql.FieldConfigArgument{
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 100},
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					limit := p.Args["limit"].(int)
					offset := p.Args["offset"].(int)
					return deps.Stations.List(p.Context, limit, offset)
				},
			},
			"station": &graphql.Field{
				Type:        stationType,
				Description: "Get a station by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					return deps.Stations.GetByID(p.Context, id)
				},
			},
			"stationsNearby": &graphql.Field{
				Type:        graphql.NewList(stationType),
				Description: "Find stations near a location",
				Args: graphql.FieldConfigArgument{
					"lat":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 5000.0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["lat"].(float64)
					lon := p.Args["lon"].(float64)
					radius := p.Args["radius"].(float64)
					limit := p.Args["limit"].(int)
					return deps.Stations.FindNearby(p.Context, lat, lon, radius, limit)
				},
			},
			"searchStations": &graphql.Field{
				Type:        graphql.NewList(stationType),
				Description: "Search stations by name (fuzzy matching)",
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q := p.Args["query"].(string)
					limit := p.Args["limit"].(int)
					return deps.Stations.Search(p.Context, q, limit)
				},
			},
			"stationsByLevel": &graphql.Field{
				Type:        graphql.NewList(stationType),
				Description: "Stations visible at a LOD tier (0-3)",
				Args: graphql.FieldConfigArgument{
					"lod": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lod := p.Args["lod"].(int)
					return deps.Stations.ListByLOD(p.Context, lod)
				},
			},
			"scenes": &graphql.Field{
				Type:        graphql.NewList(sceneType),
				Description: "The full scene catalog",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Scenes.ListAll(p.Context)
				},
			},
			"activeScenes": &graphql.Field{
				Type:        graphql.NewList(graphql.String),
				Description: "Scene ids triggered at a camera position and zoom",
				Args: graphql.FieldConfigArgument{
					"lat":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"zoom": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 1.0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					catalog, err := deps.Scenes.ListAll(p.Context)
					if err != nil {
						return nil, err
					}
					vp := domain.Viewport{
						CenterLat:    p.Args["lat"].(float64),
						CenterLon:    p.Args["lon"].(float64),
						Scale:        1,
						ZoomDistance: p.Args["zoom"].(float64),
					}
					return usecases.ComputeActiveScenes(vp, catalog), nil
				},
			},
			"zoomLevels": &graphql.Field{
				Type:        graphql.NewList(zoomLevelType),
				Description: "The zoom level catalog",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Zoom.Levels(), nil
				},
			},
			"classifyZoom": &graphql.Field{
				Type:        classificationType,
				Description: "Classify a camera distance against the catalog",
				Args: graphql.FieldConfigArgument{
					"distance": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Zoom.Classify(p.Args["distance"].(float64)), nil
				},
			},
			"viewport": &graphql.Field{
				Type:        viewportType,
				Description: "The live session viewport",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					frame, err := deps.Session.Frame(p.Context)
					if err != nil {
						return nil, err
					}
					return frame.Viewport, nil
				},
			},
			"currentTrip": &graphql.Field{
				Type:        tripType,
				Description: "The live trip state",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					frame, err := deps.Session.Frame(p.Context)
					if err != nil {
						return nil, err
					}
					return frame.Trip, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
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
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Context(),
		})

		return c.JSON(result)
	}
}
