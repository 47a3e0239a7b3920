package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"fic-expenses/internal/expenses"
	"fic-expenses/internal/schedule"
	"fic-expenses/pkg/models"
	"github.com/shopspring/decimal"
)

// Step is a state of the create wizard.
type Step int

const (
	StepBasics Step = iota
	StepAmounts
	StepPayment
	StepRecurrence
	StepConfirm
)

var stepTitles = [...]string{"Basics", "Amount", "Payment", "Recurrence", "Review"}

// String implements fmt.Stringer.
func (s Step) String() string {
	if s < StepBasics || s > StepConfirm {
		return "unknown"
	}
	return stepTitles[s]
}

// Field is one text input of a wizard step.
type Field struct {
	Key         string
	Label       string
	Placeholder string
}

var stepFields = map[Step][]Field{
	StepBasics: {
		{Key: "supplier", Label: "Supplier *", Placeholder: "Enel Energia"},
		{Key: "description", Label: "Description", Placeholder: "Electricity bill"},
		{Key: "category", Label: "Category", Placeholder: "Utilities"},
	},
	StepAmounts: {
		{Key: "amount_net", Label: "Net amount (€) *", Placeholder: "100.00"},
		{Key: "vat_rate", Label: "VAT rate (%)", Placeholder: "22"},
		{Key: "date", Label: "Expense date", Placeholder: "YYYY-MM-DD"},
	},
	StepPayment: {
		{Key: "installments", Label: "Installments", Placeholder: "1"},
		{Key: "first_due", Label: "First due date", Placeholder: "YYYY-MM-DD (empty = expense date)"},
		{Key: "stepping", Label: "Due dates", Placeholder: "end-of-month | same-day"},
	},
	StepRecurrence: {
		{Key: "recurrence", Label: "Repeat", Placeholder: "none | monthly | bimonthly | quarterly | biannual | yearly"},
		{Key: "occurrences", Label: "Occurrences", Placeholder: "4"},
	},
}

// Fields returns the inputs of a step; StepConfirm has none.
func Fields(s Step) []Field {
	return stepFields[s]
}

// Basics is the data entered on the first step.
type Basics struct {
	Supplier    string
	Description string
	Category    string
}

// Amounts is the data entered on the second step.
type Amounts struct {
	Net     decimal.Decimal
	VATRate decimal.Decimal
	Date    time.Time
}

// Payment is the data entered on the third step.
type Payment struct {
	Installments int
	FirstDue     time.Time
	Stepping     schedule.Stepping
}

// Recurrence is the data entered on the fourth step.
type Recurrence struct {
	Period      schedule.Period // 0 disables the recurrence
	Occurrences int
}

// defaultOccurrences is offered when a recurrence is first enabled.
const defaultOccurrences = 4

// Wizard is the create expense state machine. It is a value: every
// transition returns a new Wizard and each step keeps its own snapshot, so
// going back and forth never loses or aliases earlier answers.
type Wizard struct {
	step       Step
	basics     Basics
	amounts    Amounts
	payment    Payment
	recurrence Recurrence

	// Drafts produced by expenses.Plan when the review step is entered.
	preview []models.Expense
}

// NewWizard starts a wizard with today's date and the configured stepping.
func NewWizard(today time.Time, stepping schedule.Stepping) Wizard {
	return Wizard{
		step: StepBasics,
		amounts: Amounts{
			VATRate: expenses.DefaultVATRate,
			Date:    schedule.Truncate(today),
		},
		payment: Payment{
			Installments: 1,
			Stepping:     stepping,
		},
	}
}

func (w Wizard) Step() Step             { return w.step }
func (w Wizard) Basics() Basics         { return w.basics }
func (w Wizard) Amounts() Amounts       { return w.amounts }
func (w Wizard) Payment() Payment       { return w.payment }
func (w Wizard) Recurrence() Recurrence { return w.recurrence }

// Preview returns the planned expenses; only set on the review step.
func (w Wizard) Preview() []models.Expense {
	return append([]models.Expense(nil), w.preview...)
}

// Values renders the snapshot of step s as input strings, used to prefill
// the form when a step is shown again.
func (w Wizard) Values(s Step) map[string]string {
	switch s {
	case StepBasics:
		return map[string]string{
			"supplier":    w.basics.Supplier,
			"description": w.basics.Description,
			"category":    w.basics.Category,
		}
	case StepAmounts:
		net := ""
		if !w.amounts.Net.IsZero() {
			net = w.amounts.Net.StringFixed(schedule.AmountPlaces)
		}
		return map[string]string{
			"amount_net": net,
			"vat_rate":   w.amounts.VATRate.String(),
			"date":       dateValue(w.amounts.Date),
		}
	case StepPayment:
		return map[string]string{
			"installments": strconv.Itoa(w.payment.Installments),
			"first_due":    dateValue(w.payment.FirstDue),
			"stepping":     w.payment.Stepping.String(),
		}
	case StepRecurrence:
		occurrences := ""
		if w.recurrence.Period != 0 {
			occurrences = strconv.Itoa(w.recurrence.Occurrences)
		}
		return map[string]string{
			"recurrence":  w.recurrence.Period.String(),
			"occurrences": occurrences,
		}
	}
	return map[string]string{}
}

// Submit validates the values of the current step and advances. On error
// the returned Wizard is the receiver unchanged.
func (w Wizard) Submit(values map[string]string) (Wizard, error) {
	next := w

	switch w.step {
	case StepBasics:
		b, err := parseBasics(values)
		if err != nil {
			return w, err
		}
		next.basics = b

	case StepAmounts:
		a, err := parseAmounts(values, w.amounts.Date)
		if err != nil {
			return w, err
		}
		next.amounts = a

	case StepPayment:
		p, err := parsePayment(values, w.payment.Stepping)
		if err != nil {
			return w, err
		}
		next.payment = p

	case StepRecurrence:
		r, err := parseRecurrence(values)
		if err != nil {
			return w, err
		}
		next.recurrence = r

		drafts, err := expenses.Plan(next.Input())
		if err != nil {
			return w, err
		}
		next.preview = drafts

	case StepConfirm:
		return w, fmt.Errorf("nothing to submit on the review step")
	}

	next.step = w.step + 1
	return next, nil
}

// Back returns to the previous step, keeping every snapshot.
func (w Wizard) Back() (Wizard, bool) {
	if w.step == StepBasics {
		return w, false
	}
	prev := w
	prev.step = w.step - 1
	prev.preview = nil
	return prev, true
}

// Input assembles the creation request from all snapshots.
func (w Wizard) Input() expenses.Input {
	in := expenses.NewInput(w.amounts.Date, w.payment.Stepping)
	in.Supplier = w.basics.Supplier
	in.Description = w.basics.Description
	in.Category = w.basics.Category
	in.AmountNet = w.amounts.Net
	in.VATRate = w.amounts.VATRate
	in.Installments = w.payment.Installments
	in.FirstDue = w.payment.FirstDue
	if w.recurrence.Period != 0 {
		in.EveryMonths = w.recurrence.Period.Months()
		in.Occurrences = w.recurrence.Occurrences
	}
	return in
}

// VATPreview is the VAT and gross shown while amounts are typed. It is
// zero until the net amount parses.
func VATPreview(values map[string]string) (vat, gross decimal.Decimal, ok bool) {
	net, err := parseDecimal(values["amount_net"])
	if err != nil || !net.IsPositive() {
		return decimal.Zero, decimal.Zero, false
	}
	rate := expenses.DefaultVATRate
	if s := strings.TrimSpace(values["vat_rate"]); s != "" {
		if rate, err = parseDecimal(s); err != nil {
			return decimal.Zero, decimal.Zero, false
		}
	}
	in := expenses.Input{AmountNet: net, VATRate: rate}
	return in.VAT(), in.Gross(), true
}

// parseDecimal accepts a comma as the decimal separator.
func parseDecimal(raw string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(raw), ",", "."))
}

func parseBasics(values map[string]string) (Basics, error) {
	b := Basics{
		Supplier:    strings.TrimSpace(values["supplier"]),
		Description: strings.TrimSpace(values["description"]),
		Category:    strings.TrimSpace(values["category"]),
	}
	if b.Supplier == "" {
		return Basics{}, expenses.NewValidationError("supplier", "", "supplier name is required")
	}
	return b, nil
}

func parseAmounts(values map[string]string, defaultDate time.Time) (Amounts, error) {
	raw := strings.TrimSpace(values["amount_net"])
	net, err := parseDecimal(raw)
	if err != nil || !net.IsPositive() {
		return Amounts{}, expenses.NewValidationError("amount_net", raw, "enter a positive amount")
	}
	if !net.Equal(net.Round(schedule.AmountPlaces)) {
		return Amounts{}, expenses.NewValidationError("amount_net", raw, "use at most 2 decimal places")
	}

	rate := expenses.DefaultVATRate
	if s := strings.TrimSpace(values["vat_rate"]); s != "" {
		rate, err = parseDecimal(s)
		if err != nil || rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
			return Amounts{}, expenses.NewValidationError("vat_rate", s, "VAT rate must be between 0 and 100")
		}
	}

	date := defaultDate
	if s := strings.TrimSpace(values["date"]); s != "" {
		date, err = schedule.ParseDate(s)
		if err != nil {
			return Amounts{}, expenses.NewValidationError("date", s, "use YYYY-MM-DD")
		}
	}

	return Amounts{Net: net, VATRate: rate, Date: date}, nil
}

func parsePayment(values map[string]string, defaultStepping schedule.Stepping) (Payment, error) {
	p := Payment{Installments: 1, Stepping: defaultStepping}

	if s := strings.TrimSpace(values["installments"]); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > schedule.MaxInstallments {
			return Payment{}, expenses.NewValidationError("installments", s,
				fmt.Sprintf("enter a number between 1 and %d", schedule.MaxInstallments))
		}
		p.Installments = n
	}

	if s := strings.TrimSpace(values["first_due"]); s != "" {
		d, err := schedule.ParseDate(s)
		if err != nil {
			return Payment{}, expenses.NewValidationError("first_due", s, "use YYYY-MM-DD")
		}
		p.FirstDue = d
	}

	if s := strings.TrimSpace(values["stepping"]); s != "" {
		st, err := schedule.ParseStepping(s)
		if err != nil {
			return Payment{}, expenses.NewValidationError("stepping", s, "use end-of-month or same-day")
		}
		p.Stepping = st
	}

	return p, nil
}

func parseRecurrence(values map[string]string) (Recurrence, error) {
	name := strings.ToLower(strings.TrimSpace(values["recurrence"]))
	if name == "" || name == "none" {
		return Recurrence{}, nil
	}

	period, err := schedule.ParsePeriod(name)
	if err != nil {
		return Recurrence{}, expenses.NewValidationError("recurrence", name, "use none, monthly, bimonthly, quarterly, biannual or yearly")
	}

	r := Recurrence{Period: period, Occurrences: defaultOccurrences}
	if s := strings.TrimSpace(values["occurrences"]); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > schedule.MaxOccurrences {
			return Recurrence{}, expenses.NewValidationError("occurrences", s,
				fmt.Sprintf("enter a number between 1 and %d", schedule.MaxOccurrences))
		}
		r.Occurrences = n
	}
	return r, nil
}

func dateValue(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return schedule.FormatDate(t)
}
