package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf_WalksWrappedChain(t *testing.T) {
	base := Conflict("promissory.cancel", "promissória possui parcelas pagas")
	wrapped := fmt.Errorf("cancel: %w", base)

	assert.Equal(t, KindConflict, KindOf(wrapped))
	assert.True(t, errors.Is(wrapped, ErrConflict))
	assert.False(t, errors.Is(wrapped, ErrNotFound))
}

func TestKindOf_PlainErrorIsInternal(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestWrap_NilStaysNil(t *testing.T) {
	assert.NoError(t, Wrap(KindTransientSend, "uazapi.send", nil))
}

func TestError_MessageAndOp(t *testing.T) {
	err := Wrap(KindTransientSend, "uazapi.send_text", errors.New("status 503"))
	assert.Equal(t, "uazapi.send_text: status 503", err.Error())
	assert.Equal(t, "status 503", Message(err))
	assert.True(t, errors.Is(err, ErrTransientSend))
}

func TestError_IsMatchesKindAndOp(t *testing.T) {
	err := NotFound("installment.pay", "parcela não encontrada")
	assert.True(t, errors.Is(err, &Error{Kind: KindNotFound}))
	assert.True(t, errors.Is(err, &Error{Kind: KindNotFound, Op: "installment.pay"}))
	assert.False(t, errors.Is(err, &Error{Kind: KindNotFound, Op: "sale.get"}))
}
