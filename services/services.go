// Package services holds the storefront use-cases on top of the
// repositories: accounts and sign-in, the catalog, and carts.
package services

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-storefront/apperror"
)

// parseID decodes a hex ObjectID. A malformed id cannot name a stored
// record, so it is reported as NotFound with the given message.
func parseID(id, notFound string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, apperror.NotFound(notFound, err)
	}
	return oid, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
