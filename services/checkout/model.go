package checkout

import (
	"fmt"
	"time"

	"github.com/hassiiiwilliam-create/modlift-sub000/services/cart"
	"github.com/hassiiiwilliam-create/modlift-sub000/services/checkoutapi"
)

type Step string

const (
	StepAccount  Step = "account"
	StepShipping Step = "shipping"
	StepReview   Step = "review"
	StepPayment  Step = "payment"
)

var stepOrder = map[Step]int{
	StepAccount:  0,
	StepShipping: 1,
	StepReview:   2,
	StepPayment:  3,
}

func (s Step) Index() int {
	return stepOrder[s]
}

func (s Step) Before(other Step) bool {
	return s.Index() < other.Index()
}

func ParseStep(name string) (Step, error) {
	step := Step(name)
	if _, exists := stepOrder[step]; !exists {
		return "", fmt.Errorf("unknown checkout step %s", name)
	}
	return step, nil
}

type AddressMode string

const (
	AddressModeNone  AddressMode = ""
	AddressModeSaved AddressMode = "saved"
	AddressModeNew   AddressMode = "new"
)

// Session is the aggregate root of one buyer's path from cart to committed
// order. Totals and PaymentHandle are only set after a successful pricing
// call, and the cart referenced by CartUID is cleared only after an order
// has been durably committed.
type Session struct {
	UID          string
	CartUID      string
	CreatedAt    time.Time
	LastModified *time.Time

	Step         Step
	FurthestStep Step

	Identity checkoutapi.BuyerIdentity

	Address             checkoutapi.ShippingAddress
	AddressMode         AddressMode
	AddressAutoSelected bool
	SavedAddressUID     string

	// Items is the snapshot priced by the gateway, refreshed on every
	// pricing call.
	Items  []cart.Item
	Totals *checkoutapi.PricedTotals
	Handle *checkoutapi.PaymentHandle

	PricingInFlight  bool
	ConfirmInFlight  bool
	PaymentInitiated bool

	Completed bool
	OrderUID  string
	Notes     string
}

// Result reports the outcome of a payment submission to the caller.
type Result struct {
	Status   ResultStatus `json:"status"`
	OrderUID string       `json:"orderUid,omitempty"`
	Message  string       `json:"message,omitempty"`
}

type ResultStatus string

const (
	ResultCompleted      ResultStatus = "completed"
	ResultRequiresAction ResultStatus = "requires_action"
)
