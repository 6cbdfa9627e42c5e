package controllers

import (
	"net/http"
	"strconv"

	apperrors "ordem-servico/pkg/errors"

	"github.com/labstack/echo/v4"
)

// paramID читает числовой параметр пути (":id", ":partId" ...).
func paramID(ctx echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.NewHttpError(
			http.StatusBadRequest,
			"Identificador inválido",
			apperrors.ErrBadRequest,
			map[string]interface{}{"param": name, "value": ctx.Param(name)},
		)
	}
	return id, nil
}

// bindAndValidate — Bind + Validate с единым ответом 400 на кривой JSON.
func bindAndValidate(ctx echo.Context, dest interface{}) error {
	if err := ctx.Bind(dest); err != nil {
		return apperrors.NewHttpError(http.StatusBadRequest, "Corpo da requisição inválido", err, nil)
	}
	return ctx.Validate(dest)
}
