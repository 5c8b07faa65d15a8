package handlers

import (
	"encoding/json"
	"errors"
	"strconv"

	xhttp "github.com/zapshop/commerce-bot/pkg/http"
)

var errMissingTenant = errors.New("missing or invalid X-Tenant-ID header")

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	body := ctx.PostBody()
	return json.Unmarshal(body, dst)
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, map[string]string{"error": msg})
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}

func pathInt64(ctx *xhttp.RequestCtx, name string) (int64, error) {
	v, ok := ctx.UserValue(name).(string)
	if !ok {
		return 0, errors.New("missing path parameter " + name)
	}
	return strconv.ParseInt(v, 10, 64)
}

// tenantID reads the dashboard's tenant scope. Every dashboard route is
// tenant-scoped through this header; there is no cross-tenant endpoint.
func tenantID(ctx *xhttp.RequestCtx) (int64, error) {
	raw := string(ctx.Request.Header.Peek("X-Tenant-ID"))
	if raw == "" {
		return 0, errMissingTenant
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errMissingTenant
	}
	return id, nil
}
