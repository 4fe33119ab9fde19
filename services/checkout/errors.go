package checkout

import (
	"fmt"

	"github.com/hassiiiwilliam-create/modlift-sub000/lib/myerrors"
	"github.com/hassiiiwilliam-create/modlift-sub000/services/order"
	"github.com/hassiiiwilliam-create/modlift-sub000/services/pricing"
)

// ValidationError blocks a transition and is immediately correctable by
// the shopper. It never reaches the network layer.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

// IdentityError reports a missing or malformed buyer identity.
type IdentityError struct {
	Message string
}

func (e IdentityError) Error() string {
	return e.Message
}

// PaymentError carries the processor's human-readable reason. HandleExpired
// means the current payment handle is unusable and a fresh pricing call is
// needed before retrying.
type PaymentError struct {
	Reason        string
	HandleExpired bool
}

func (e PaymentError) Error() string {
	return fmt.Sprintf("payment failed: %s", e.Reason)
}

// asHTTPError maps the checkout error taxonomy onto transport errors.
// CommitError is deliberately mapped away from the payment range: retrying
// the payment after a commit failure would double-charge.
func asHTTPError(err error) error {
	switch typed := err.(type) {
	case ValidationError, IdentityError:
		return myerrors.NewInvalidInputError(err)
	case PaymentError:
		return myerrors.NewPaymentRequiredError(err)
	case pricing.GatewayError:
		return myerrors.NewUnavailableError(err)
	case order.CommitError:
		return myerrors.NewConflictError(typed)
	default:
		return err
	}
}
