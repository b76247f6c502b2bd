package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ErlanBelekov/invoice-console/internal/apiclient"
	"github.com/ErlanBelekov/invoice-console/internal/domain"
)

type UserRepository struct {
	client *apiclient.Client
}

func NewUserRepository(client *apiclient.Client) *UserRepository {
	return &UserRepository{client: client}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	if err := r.client.Get(ctx, "/api/auth/"+id+"/", &u); err != nil {
		if apiclient.StatusCode(err) == http.StatusNotFound {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// UpdateProfile sends the edit as multipart. The avatar part is only
// included when a new file was chosen.
func (r *UserRepository) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error) {
	form := &apiclient.Form{}
	form.Set("name", update.Name)
	form.Set("description", update.Description)
	form.Set("business_name", update.BusinessName)
	form.Set("vat_number", update.VATNumber)
	form.Set("registration_number", update.RegistrationNumber)
	form.Set("address", update.Address)
	form.Set("city", update.City)
	form.Set("postal_code", update.PostalCode)
	form.Set("country", update.Country)
	form.Set("phone", update.Phone)
	if a := update.Avatar; a != nil {
		form.AddFile(apiclient.File{
			Field:       "avatar",
			Filename:    a.Filename,
			ContentType: a.ContentType,
			Data:        a.Data,
		})
	}

	var u domain.User
	if err := r.client.PostMultipart(ctx, "/api/auth/edit/", form, &u); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return &u, nil
}
