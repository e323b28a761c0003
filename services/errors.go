package services

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// Erros tipados do motor de comandas. Toda pré-condição violada é detectada
// antes de qualquer escrita e a transação inteira sofre rollback: nunca
// existe estado parcialmente aplicado junto com um erro.

// NotFoundError -> entidade referenciada não existe.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s #%d não encontrado(a)", e.Entity, e.ID)
}

// InvalidStateError -> operação não vale para o status atual da comanda.
type InvalidStateError struct {
	Msg string
}

func (e *InvalidStateError) Error() string { return e.Msg }

// ValidationError -> entrada malformada ou fora de faixa
// (ex: quitar mais quantidade do que o item possui).
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// ConflictError -> violação de unicidade. ExistingTabID permite ao caller
// retomar a comanda aberta já existente do cliente.
type ConflictError struct {
	Msg           string
	ExistingTabID uint
}

func (e *ConflictError) Error() string { return e.Msg }

// InsufficientStockError -> saída manual deixaria o estoque negativo.
// (Saída via comanda não passa por essa checagem; ver ItemService.)
type InsufficientStockError struct {
	ProductID uint
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("estoque insuficiente para o produto #%d: disponível %s, solicitado %s",
		e.ProductID, e.Available.StringFixed(3), e.Requested.StringFixed(3))
}

// UntrackedError -> produto não controla estoque; o caller decide se
// trata como sucesso ou como erro.
type UntrackedError struct {
	ProductID uint
}

func (e *UntrackedError) Error() string {
	return fmt.Sprintf("produto #%d não controla estoque", e.ProductID)
}

// HTTPStatus mapeia o erro para o código de resposta usado pelos controllers.
func HTTPStatus(err error) int {
	var (
		notFound     *NotFoundError
		invalidState *InvalidStateError
		validation   *ValidationError
		conflict     *ConflictError
		insufficient *InsufficientStockError
		untracked    *UntrackedError
	)
	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &invalidState),
		errors.As(err, &validation),
		errors.As(err, &insufficient),
		errors.As(err, &untracked):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
