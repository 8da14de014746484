package entities_test

import (
	"testing"

	"github.com/reglet-dev/sieve/domain/entities"
	"github.com/stretchr/testify/assert"
)

func TestErrorDetail_Error(t *testing.T) {
	var nilDetail *entities.ErrorDetail
	assert.Empty(t, nilDetail.Error())

	assert.Equal(t, "boom", (&entities.ErrorDetail{Type: "internal", Message: "boom"}).Error())

	detail := &entities.ErrorDetail{
		Type:    "link",
		Message: "link com.example.guest.plugin.Main failed",
		Code:    "com.example.guest.plugin.Main",
		Wrapped: &entities.ErrorDetail{Type: "denied", Message: "blocked", Code: "java.io.File"},
	}
	assert.Equal(t, "link: link com.example.guest.plugin.Main failed [com.example.guest.plugin.Main]: denied: blocked [java.io.File]", detail.Error())
}

func TestErrorDetail_Root(t *testing.T) {
	var nilDetail *entities.ErrorDetail
	assert.Nil(t, nilDetail.Root())

	denied := &entities.ErrorDetail{Type: "denied", Code: "java.io.File"}
	chain := &entities.ErrorDetail{Type: "link", Wrapped: &entities.ErrorDetail{Type: "link", Wrapped: denied}}
	assert.Same(t, denied, chain.Root())
	assert.Same(t, denied, denied.Root())
}
