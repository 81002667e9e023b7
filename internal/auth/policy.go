package auth

import (
	"fmt"

	"github.com/spec-kit/product-service/internal/domain"
	apperrors "github.com/spec-kit/product-service/pkg/util/errorutil"
)

// CanMutate reports whether account owns resource. Reads are never checked.
func CanMutate(account *domain.Account, resource domain.OwnedResource) bool {
	if account == nil || resource == nil {
		return false
	}
	return resource.Owner() == account.ID
}

// AuthorizeMutation returns Forbidden unless account owns resource. Callers
// check that the resource exists first so a missing resource stays NotFound.
func AuthorizeMutation(account *domain.Account, resource domain.OwnedResource, action string) error {
	if CanMutate(account, resource) {
		return nil
	}
	return apperrors.NewForbidden(fmt.Sprintf("Not authorized to %s this resource", action))
}
