package payroll

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

// Decimal places kept by the store: hours are decimal(6,2), money decimal(20,4).
const (
	hourPlaces  = 2
	moneyPlaces = 4
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// RecordUpdate carries the editable fields of a week record. Only non-nil
// fields are applied. Day names are kept here, at the edge; the engine works
// on the indexed Attendance.
type RecordUpdate struct {
	Lundi        *decimal.Decimal `json:"lundi,omitempty" validate:"omitempty,gte=0,lte=24"`
	Mardi        *decimal.Decimal `json:"mardi,omitempty" validate:"omitempty,gte=0,lte=24"`
	Mercredi     *decimal.Decimal `json:"mercredi,omitempty" validate:"omitempty,gte=0,lte=24"`
	Jeudi        *decimal.Decimal `json:"jeudi,omitempty" validate:"omitempty,gte=0,lte=24"`
	Vendredi     *decimal.Decimal `json:"vendredi,omitempty" validate:"omitempty,gte=0,lte=24"`
	Samedi       *decimal.Decimal `json:"samedi,omitempty" validate:"omitempty,gte=0,lte=24"`
	LundiSupp    *decimal.Decimal `json:"lundiSupp,omitempty" validate:"omitempty,gte=0,lte=24"`
	MardiSupp    *decimal.Decimal `json:"mardiSupp,omitempty" validate:"omitempty,gte=0,lte=24"`
	MercrediSupp *decimal.Decimal `json:"mercrediSupp,omitempty" validate:"omitempty,gte=0,lte=24"`
	JeudiSupp    *decimal.Decimal `json:"jeudiSupp,omitempty" validate:"omitempty,gte=0,lte=24"`
	VendrediSupp *decimal.Decimal `json:"vendrediSupp,omitempty" validate:"omitempty,gte=0,lte=24"`
	SamediSupp   *decimal.Decimal `json:"samediSupp,omitempty" validate:"omitempty,gte=0,lte=24"`
	Avance       *decimal.Decimal `json:"avance,omitempty" validate:"omitempty,gte=0"`
	Description  *string          `json:"description,omitempty" validate:"omitempty,max=500"`
}

func (u *RecordUpdate) regular() [DaysInWeek]**decimal.Decimal {
	return [DaysInWeek]**decimal.Decimal{&u.Lundi, &u.Mardi, &u.Mercredi, &u.Jeudi, &u.Vendredi, &u.Samedi}
}

func (u *RecordUpdate) overtime() [DaysInWeek]**decimal.Decimal {
	return [DaysInWeek]**decimal.Decimal{&u.LundiSupp, &u.MardiSupp, &u.MercrediSupp, &u.JeudiSupp, &u.VendrediSupp, &u.SamediSupp}
}

// SetDay sets one day bucket on the update.
func (u *RecordUpdate) SetDay(d Day, overtime bool, hours decimal.Decimal) {
	if !d.Valid() {
		return
	}
	h := hours
	if overtime {
		*u.overtime()[d] = &h
		return
	}
	*u.regular()[d] = &h
}

// SetField sets a field by its JSON name ("lundi", "jeudiSupp", "avance",
// "description"). It reports false for unknown names or unparsable numbers.
func (u *RecordUpdate) SetField(name, value string) bool {
	if name == "description" {
		v := value
		u.Description = &v
		return true
	}

	amount, err := decimal.NewFromString(strings.Replace(strings.TrimSpace(value), ",", ".", 1))
	if err != nil {
		return false
	}
	if name == "avance" {
		u.Avance = &amount
		return true
	}

	overtime := false
	dayName := name
	if strings.HasSuffix(name, "Supp") {
		overtime = true
		dayName = strings.TrimSuffix(name, "Supp")
	}
	d, ok := ParseDay(dayName)
	if !ok || dayName != d.String() {
		return false
	}
	u.SetDay(d, overtime, amount)
	return true
}

// Empty reports whether the update changes nothing.
func (u RecordUpdate) Empty() bool {
	for _, p := range u.regular() {
		if *p != nil {
			return false
		}
	}
	for _, p := range u.overtime() {
		if *p != nil {
			return false
		}
	}
	return u.Avance == nil && u.Description == nil
}

// ApplyTo copies the set fields onto r and returns the new description, if any.
func (u RecordUpdate) ApplyTo(r *Record) *string {
	for i, p := range u.regular() {
		if *p != nil {
			r.Attendance[i].Regular = **p
		}
	}
	for i, p := range u.overtime() {
		if *p != nil {
			r.Attendance[i].Overtime = **p
		}
	}
	if u.Avance != nil {
		r.Avance = *u.Avance
	}
	return u.Description
}

// ValidateUpdate checks an update before anything is sent or stored.
func ValidateUpdate(u RecordUpdate) error {
	if u.Empty() {
		return &ValidationError{Fields: map[string]string{"update": "no field to update"}}
	}
	return validateInput(u, u)
}

type recordInput struct {
	SalaireHebdomadaire decimal.Decimal `json:"salaireHebdomadaire" validate:"gte=0"`
	RecordUpdate
}

// ValidateRecord checks the invariants of a full record: salary, hours and
// advance are all non-negative, and each fits its column.
func ValidateRecord(r Record) error {
	in := recordInput{SalaireHebdomadaire: r.SalaireHebdomadaire}
	for _, d := range Days() {
		in.SetDay(d, false, r.Attendance[d].Regular)
		in.SetDay(d, true, r.Attendance[d].Overtime)
	}
	avance := r.Avance
	in.Avance = &avance

	var out *ValidationError
	if err := validateInput(in, in.RecordUpdate); err != nil && !errors.As(err, &out) {
		return err
	}
	if out = placesError(out, "salaireHebdomadaire", &in.SalaireHebdomadaire, moneyPlaces); out == nil {
		return nil
	}
	return out
}

// validateInput runs the struct tags on v, then checks that no value carries
// more decimal places than the store keeps.
func validateInput(v any, u RecordUpdate) error {
	var out *ValidationError
	if err := toValidationError(validate.Struct(v)); err != nil {
		if !errors.As(err, &out) {
			return err
		}
	}
	for _, d := range Days() {
		out = placesError(out, d.String(), *u.regular()[d], hourPlaces)
		out = placesError(out, d.String()+"Supp", *u.overtime()[d], hourPlaces)
	}
	out = placesError(out, "avance", u.Avance, moneyPlaces)
	if out == nil {
		return nil
	}
	return out
}

// placesError records name on out when d has more than places decimals. A
// field already rejected by its tags keeps that reason.
func placesError(out *ValidationError, name string, d *decimal.Decimal, places int32) *ValidationError {
	if d == nil || d.Equal(d.Truncate(places)) {
		return out
	}
	if out == nil {
		out = &ValidationError{Fields: map[string]string{}}
	}
	if _, ok := out.Fields[name]; !ok {
		out.Fields[name] = fmt.Sprintf("must have at most %d decimal places", places)
	}
	return out
}

func toValidationError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		switch fe.Tag() {
		case "gte":
			out.Fields[fe.Field()] = "must be greater than or equal to " + fe.Param()
		case "lte":
			out.Fields[fe.Field()] = "must be less than or equal to " + fe.Param()
		case "max":
			out.Fields[fe.Field()] = "must be at most " + fe.Param() + " characters"
		default:
			out.Fields[fe.Field()] = "failed " + fe.Tag()
		}
	}
	return out
}
