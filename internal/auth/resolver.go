package auth

import (
	"fmt"

	"github.com/takasakimo/kirei/internal/model"
)

// ResolveTenant decides which tenant a request may act on. Precedence, first
// match wins:
//
//  1. super_admin: the explicit hint is required and wins. There is no
//     implicit default tenant for platform operators.
//  2. admin: the session's tenant, always. A hint is ignored, not an error —
//     an admin must not be able to reach another tenant by crafting a
//     tenant_id parameter.
//  3. customer: same as admin.
//
// The asymmetry is deliberate and is the security boundary of the whole
// system; do not collapse it into "hint wins when present".
func ResolveTenant(sess *model.Session, hint *int64) (int64, error) {
	switch sess.ActorKind {
	case model.ActorSuperAdmin:
		if hint == nil {
			return 0, ErrTenantRequired
		}
		return *hint, nil
	case model.ActorAdmin, model.ActorCustomer:
		if sess.TenantID == nil {
			// Schema forbids this; a nil here means the row was tampered with.
			return 0, fmt.Errorf("session %d has kind %s but no tenant", sess.ID, sess.ActorKind)
		}
		return *sess.TenantID, nil
	default:
		return 0, fmt.Errorf("session %d has unknown actor kind %q", sess.ID, sess.ActorKind)
	}
}
