package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KSimonJNR/paystream/contract"
	"github.com/KSimonJNR/paystream/types"
	"github.com/go-playground/validator/v10"
)

// ValidateTransactionHash checks that hash is a felt.
func ValidateTransactionHash(hash string) error {
	if strings.TrimSpace(hash) == "" {
		return &types.Error{Code: types.ErrInvalidArgument, Message: "transaction hash cannot be empty"}
	}
	if _, err := contract.ParseFelt(hash); err != nil {
		return fmt.Errorf("invalid transaction hash: %w", err)
	}
	return nil
}

// describe turns validator errors into one line per failing field.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return strings.Join(msgs, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "gtfield":
		return fmt.Sprintf("%s must be after %s", field, fe.Param())
	case "felt":
		return fmt.Sprintf("%s is not a valid felt: %v", field, fe.Value())
	case "network":
		return fmt.Sprintf("unsupported network: %v", fe.Value())
	case "url":
		return fmt.Sprintf("%s is not a valid url", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
