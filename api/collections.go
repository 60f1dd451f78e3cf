package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"

	"github.com/zestyzy/CampusStudyHub/domain"
	"github.com/zestyzy/CampusStudyHub/storage"
)

func registerCollection[T record[T]](g *echo.Group, name string, col Collection[T]) {
	g.GET("/"+name, listRecords(col))
	g.PUT("/"+name, putRecord(col))
	g.POST("/"+name+"/import", importRecords(col), GzipRequestMiddleware())
	g.POST("/"+name+"/reset", resetCollection(col))
	g.DELETE("/"+name+"/:id", deleteRecord(col))
}

type corruptResponse struct {
	Error       string `json:"error"`
	Recoverable bool   `json:"recoverable"`
}

// storeError maps load/save failures to responses. A corrupt collection file
// is recoverable: the client may offer the user a reset instead of losing
// data silently.
func storeError(c echo.Context, err error) error {
	var corrupt *storage.CorruptError
	if errors.As(err, &corrupt) {
		return c.JSON(http.StatusUnprocessableEntity, corruptResponse{Error: corrupt.Error(), Recoverable: true})
	}
	c.Logger().Error(err)
	return c.String(http.StatusInternalServerError, err.Error())
}

func listRecords[T record[T]](col Collection[T]) echo.HandlerFunc {
	return func(c echo.Context) error {
		records, err := col.Load(c.Request().Context())
		if err != nil {
			return storeError(c, err)
		}
		return c.JSON(http.StatusOK, records)
	}
}

func putRecord[T record[T]](col Collection[T]) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		body, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return c.String(http.StatusBadRequest, "unable to read body")
		}
		var rec T
		if err := sonic.Unmarshal(body, &rec); err != nil {
			return c.String(http.StatusBadRequest, "malformed record")
		}
		if rec.RecordID() == "" {
			rec = rec.WithID(domain.NewID())
		}
		if err := rec.Validate(); err != nil {
			return c.String(http.StatusBadRequest, err.Error())
		}

		records, err := col.Load(ctx)
		if err != nil {
			return storeError(c, err)
		}
		if err := col.Save(ctx, storage.Upsert(records, rec)); err != nil {
			return storeError(c, err)
		}
		return c.JSON(http.StatusOK, rec)
	}
}

type importResponse struct {
	Imported int `json:"imported"`
}

func importRecords[T record[T]](col Collection[T]) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		body, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return c.String(http.StatusBadRequest, "unable to read body")
		}
		var incoming []T
		if err := sonic.Unmarshal(body, &incoming); err != nil {
			return c.String(http.StatusBadRequest, "malformed record list")
		}
		for i, rec := range incoming {
			if rec.RecordID() == "" {
				incoming[i] = rec.WithID(domain.NewID())
			}
			if err := incoming[i].Validate(); err != nil {
				return c.String(http.StatusBadRequest, err.Error())
			}
		}

		records, err := col.Load(ctx)
		if err != nil {
			return storeError(c, err)
		}
		for _, rec := range incoming {
			records = storage.Upsert(records, rec)
		}
		if err := col.Save(ctx, records); err != nil {
			return storeError(c, err)
		}
		return c.JSON(http.StatusOK, importResponse{Imported: len(incoming)})
	}
}

// resetCollection replaces the collection with an empty one. Clients call it
// only after explicit user confirmation, typically to recover from a corrupt
// file reported by a load.
func resetCollection[T record[T]](col Collection[T]) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := col.Save(c.Request().Context(), []T{}); err != nil {
			return storeError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func deleteRecord[T record[T]](col Collection[T]) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		id := c.Param("id")
		if id == "" {
			return c.String(http.StatusBadRequest, "missing record id")
		}
		records, err := col.Load(ctx)
		if err != nil {
			return storeError(c, err)
		}
		if err := col.Save(ctx, storage.Remove(records, id)); err != nil {
			return storeError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
