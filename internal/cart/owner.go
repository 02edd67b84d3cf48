package cart

import (
	"strings"

	pkgerrors "github.com/smartkisan/kisan-backend/pkg/errors"
)

// Owner identifies whose cart or orders a request addresses. Exactly one of
// UserID and GuestID is set.
type Owner struct {
	UserID  string
	GuestID string
}

func UserOwner(id string) Owner  { return Owner{UserID: id} }
func GuestOwner(id string) Owner { return Owner{GuestID: id} }

func (o Owner) IsUser() bool { return o.UserID != "" }

// Validate rejects owners with neither or both identities.
func (o Owner) Validate() error {
	user := strings.TrimSpace(o.UserID)
	guest := strings.TrimSpace(o.GuestID)
	if (user == "") == (guest == "") {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "Unable to resolve cart owner")
	}
	return nil
}

// Column returns the owner column and value used in queries.
func (o Owner) Column() (string, string) {
	if o.IsUser() {
		return "user_id", o.UserID
	}
	return "guest_id", o.GuestID
}

func (o Owner) String() string {
	if o.IsUser() {
		return "user:" + o.UserID
	}
	return "guest:" + o.GuestID
}
