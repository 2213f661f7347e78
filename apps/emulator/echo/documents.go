package echoapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/campuscopilot/core"
	remotesvc "github.com/trezcool/campuscopilot/services/remote"
)

var keepAliveInterval = 15 * time.Second

var collections = map[string]bool{
	core.UsersCollection:         true,
	core.EventsCollection:        true,
	core.AssignmentsCollection:   true,
	core.NotificationsCollection: true,
}

type documentsApi struct {
	docs core.DocumentStore
}

func registerDocumentsAPI(g *echo.Group, jwt echo.MiddlewareFunc, docs core.DocumentStore) {
	api := documentsApi{docs: docs}

	cg := g.Group("/collections/:name", jwt, collectionMiddleware())
	cg.POST("", api.create)
	cg.GET("", api.list)
	cg.GET("/watch", api.watch)

	dg := cg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.set, ownProfileMiddleware())
	dg.DELETE("", api.destroy, ownProfileMiddleware())
}

// collectionMiddleware rejects unknown collections.
func collectionMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if !collections[ctx.Param("name")] {
				return errHttpNotFound
			}
			return next(ctx)
		}
	}
}

// ownProfileMiddleware only lets an account write its own user profile.
func ownProfileMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if ctx.Param("name") != core.UsersCollection {
				return next(ctx)
			}
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			if claims.Subject != ctx.Param("id") {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}

// bindData decodes the body only: echo's binder would copy the path params into the map.
func bindData(ctx echo.Context) (map[string]interface{}, error) {
	data := make(map[string]interface{})
	if err := json.NewDecoder(ctx.Request().Body).Decode(&data); err != nil {
		return nil, &echo.HTTPError{
			Code:     http.StatusBadRequest,
			Message:  "document data must be a JSON object",
			Internal: err,
		}
	}
	return data, nil
}

// Handlers

func (api *documentsApi) create(ctx echo.Context) error {
	data, err := bindData(ctx)
	if err != nil {
		return err
	}
	doc, err := api.docs.Create(ctx.Request().Context(), ctx.Param("name"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, doc)
}

func (api *documentsApi) list(ctx echo.Context) error {
	docs, err := api.docs.List(ctx.Request().Context(), ctx.Param("name"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, docs)
}

func (api *documentsApi) retrieve(ctx echo.Context) error {
	doc, err := api.docs.Get(ctx.Request().Context(), ctx.Param("name"), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, doc)
}

func (api *documentsApi) set(ctx echo.Context) error {
	data, err := bindData(ctx)
	if err != nil {
		return err
	}
	doc, err := api.docs.Set(ctx.Request().Context(), ctx.Param("name"), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, doc)
}

func (api *documentsApi) destroy(ctx echo.Context) error {
	if err := api.docs.Delete(ctx.Request().Context(), ctx.Param("name"), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// watch streams one snapshot event per change until the client goes away.
func (api *documentsApi) watch(ctx echo.Context) error {
	snapshots, err := api.docs.Watch(ctx.Request().Context(), ctx.Param("name"))
	if err != nil {
		return err
	}

	res := ctx.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case docs, ok := <-snapshots:
			if !ok {
				return nil
			}
			b, err := json.Marshal(docs)
			if err != nil {
				return errors.Wrap(err, "encoding snapshot")
			}
			if _, err = fmt.Fprintf(res, "event: %s\ndata: %s\n\n", remotesvc.SnapshotEvent, b); err != nil {
				return nil // client gone
			}
			res.Flush()
		case <-keepAlive.C:
			if _, err = fmt.Fprint(res, ": keep-alive\n\n"); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}
