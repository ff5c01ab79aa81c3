package validations

import (
	"context"

	domainNote "github.com/smartnotes/summarizer/domains/note"
	pkgError "github.com/smartnotes/summarizer/pkg/error"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func ValidateCreateNote(ctx context.Context, request domainNote.CreateNoteRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Title, validation.Required, validation.Length(1, 255)),
		validation.Field(&request.Content, validation.Required),
		validation.Field(&request.OwnerID, validation.Required),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidateUpdateNote(ctx context.Context, request domainNote.UpdateNoteRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Title, validation.NilOrNotEmpty, validation.Length(1, 255)),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
