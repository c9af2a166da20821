package visit

import (
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ProductInput is one product line as entered by the user.
type ProductInput struct {
	Name          string  `json:"name"`
	FinalizedRate float64 `json:"finalizedRate" validate:"gte=0"`
	Remarks       string  `json:"remarks"`
}

// Form is a visit as entered by the user, before it is handed to the store.
type Form struct {
	ClientName       string         `json:"clientName" validate:"required"`
	BusinessLocation string         `json:"businessLocation" validate:"required"`
	Date             string         `json:"date" validate:"required,datetime=2006-01-02"`
	Products         []ProductInput `json:"products" validate:"billable,dive"`
}

// FormError maps form fields to what is wrong with them.
type FormError struct {
	Fields map[string]string
}

func (e *FormError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + " " + e.Fields[k]
	}
	return "invalid visit: " + strings.Join(parts, "; ")
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func formValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		if err := validate.RegisterValidation("billable", billable); err != nil {
			panic(err)
		}
	})
	return validate
}

// billable requires at least one product with a name and a positive rate.
func billable(fl validator.FieldLevel) bool {
	products, ok := fl.Field().Interface().([]ProductInput)
	if !ok {
		return false
	}
	for _, p := range products {
		if strings.TrimSpace(p.Name) != "" && p.FinalizedRate > 0 {
			return true
		}
	}
	return false
}

var fieldMessages = map[string]string{
	"required": "is required",
	"datetime": "must be a date (YYYY-MM-DD)",
	"gte":      "must not be negative",
	"billable": "needs at least one product with a name and a rate above zero",
}

// normalized returns a copy with surrounding whitespace trimmed.
func (f Form) normalized() Form {
	f.ClientName = strings.TrimSpace(f.ClientName)
	f.BusinessLocation = strings.TrimSpace(f.BusinessLocation)
	f.Date = strings.TrimSpace(f.Date)

	products := make([]ProductInput, len(f.Products))
	for i, p := range f.Products {
		p.Name = strings.TrimSpace(p.Name)
		p.Remarks = strings.TrimSpace(p.Remarks)
		products[i] = p
	}
	f.Products = products
	return f
}

// Validate checks the form the way the entry screen does before saving.
func (f Form) Validate() error {
	err := formValidator().Struct(f.normalized())
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, ve := range verrs {
		name := ve.Namespace()
		if _, rest, found := strings.Cut(name, "."); found {
			name = rest
		}
		msg, ok := fieldMessages[ve.Tag()]
		if !ok {
			msg = "is invalid"
		}
		fields[name] = msg
	}
	return &FormError{Fields: fields}
}

// Draft validates the form and builds the visit to hand to the store.
// Products without a name are dropped.
func (f Form) Draft(ownerID, ownerName string, status Status) (ClientVisit, error) {
	if err := f.Validate(); err != nil {
		return ClientVisit{}, err
	}
	n := f.normalized()

	products := make([]Product, 0, len(n.Products))
	for _, p := range n.Products {
		if p.Name == "" {
			continue
		}
		products = append(products, Product{
			Name:          p.Name,
			FinalizedRate: p.FinalizedRate,
			Remarks:       p.Remarks,
		})
	}

	return ClientVisit{
		ClientName:          n.ClientName,
		BusinessLocation:    n.BusinessLocation,
		Date:                n.Date,
		Products:            products,
		MarketingPersonID:   ownerID,
		MarketingPersonName: ownerName,
		Status:              status,
	}, nil
}

// FormOf returns the form a user would see when editing v.
func FormOf(v ClientVisit) Form {
	products := make([]ProductInput, len(v.Products))
	for i, p := range v.Products {
		products[i] = ProductInput{Name: p.Name, FinalizedRate: p.FinalizedRate, Remarks: p.Remarks}
	}
	return Form{
		ClientName:       v.ClientName,
		BusinessLocation: v.BusinessLocation,
		Date:             v.Date,
		Products:         products,
	}
}
