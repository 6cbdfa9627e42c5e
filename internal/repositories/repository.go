package repositories

import (
	"errors"
	"strings"

	"ordem-servico/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

func pgErrorCode(err error) (string, string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}

func isUniqueViolation(err error) bool {
	code, _ := pgErrorCode(err)
	return code == pgUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	code, _ := pgErrorCode(err)
	return code == pgForeignKeyViolation
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// applyFilters добавляет filter[key] из белого списка; "a,b" превращается в IN.
func applyFilters(b sq.SelectBuilder, filter types.Filter, allowed map[string]string) sq.SelectBuilder {
	for key, value := range filter.Filter {
		column, ok := allowed[key]
		if !ok {
			continue
		}
		if items, ok := value.(string); ok && strings.Contains(items, ",") {
			b = b.Where(sq.Eq{column: strings.Split(items, ",")})
		} else {
			b = b.Where(sq.Eq{column: value})
		}
	}
	return b
}

// applySort — сортировка только по белому списку, иначе defaultOrder.
func applySort(b sq.SelectBuilder, filter types.Filter, allowed map[string]string, defaultOrder string) sq.SelectBuilder {
	sorted := false
	for field, direction := range filter.Sort {
		column, ok := allowed[field]
		if !ok {
			continue
		}
		safeDirection := "ASC"
		if strings.EqualFold(direction, "desc") {
			safeDirection = "DESC"
		}
		b = b.OrderBy(column + " " + safeDirection)
		sorted = true
	}
	if !sorted && defaultOrder != "" {
		b = b.OrderBy(defaultOrder)
	}
	return b
}

func applyPagination(b sq.SelectBuilder, filter types.Filter) sq.SelectBuilder {
	if !filter.WithPagination {
		return b
	}
	if filter.Limit > 0 {
		b = b.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		b = b.Offset(uint64(filter.Offset))
	}
	return b
}

// ilikeAny — OR по нескольким колонкам для строки поиска.
func ilikeAny(search string, columns ...string) sq.Or {
	pattern := "%" + strings.TrimSpace(search) + "%"
	cond := make(sq.Or, 0, len(columns))
	for _, col := range columns {
		cond = append(cond, sq.ILike{col: pattern})
	}
	return cond
}
