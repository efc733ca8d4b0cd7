package domain

import (
	"encoding/json"
	"strconv"
	"time"

	goa "goa.design/goa/v3/pkg"

	apperrors "leadforms/pkg/errors"
)

// ParseLead builds a Lead from a decoded form body. Every field problem is
// collected into a single validation error. Unknown keys are ignored, as are
// client supplied _id and createdAt.
func ParseLead(payload map[string]any, now time.Time) (*Lead, error) {
	var err error
	field := func(name string) string {
		s, e := stringField(payload, name, "body")
		err = goa.MergeErrors(err, e)
		return s
	}
	required := func(name string) string {
		s, e := stringField(payload, name, "body")
		switch {
		case e != nil:
			err = goa.MergeErrors(err, e)
		case s == "":
			err = goa.MergeErrors(err, goa.MissingFieldError(name, "body"))
		}
		return s
	}

	lead := &Lead{
		FirstName:        required("firstName"),
		LastName:         required("lastName"),
		Email:            required("email"),
		Phone:            required("phone"),
		PhoneExt:         field("phoneExt"),
		TextNumber:       field("textNumber"),
		BusinessName:     field("businessName"),
		BusinessPhone:    field("businessPhone"),
		BusinessPhoneExt: field("businessPhoneExt"),
		BusinessEmail:    field("businessEmail"),
		BusinessServices: field("businessServices"),
		HasWebsite:       field("hasWebsite"),
		WebsiteAddress:   field("websiteAddress"),
		Message:          field("message"),
		CreatedAt:        now.UTC(),
	}

	if raw := required("preferredContact"); raw != "" {
		method, ok := ParseContactMethod(raw)
		if !ok {
			err = goa.MergeErrors(err, goa.InvalidEnumValueError("body.preferredContact", raw, enumValues(ContactMethods)))
		}
		lead.PreferredContact = method
	}

	if raw := required("serviceDesired"); raw != "" {
		svc, ok := ParseService(raw)
		if !ok {
			err = goa.MergeErrors(err, goa.InvalidEnumValueError("body.serviceDesired", raw, enumValues(Services)))
		}
		lead.ServiceDesired = svc
	}

	address, addrErr := billingAddress(payload)
	err = goa.MergeErrors(err, addrErr)
	lead.BillingAddress = address

	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeValidation, "invalid lead", err)
	}
	return lead, nil
}

// billingAddress reads the optional nested address. An absent or null object
// yields nil; a present object without a country gets DefaultCountry.
func billingAddress(payload map[string]any) (*BillingAddress, error) {
	raw, ok := payload["billingAddress"]
	if !ok || raw == nil {
		return nil, nil
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, goa.InvalidFieldTypeError("body.billingAddress", raw, "object")
	}

	var err error
	field := func(name string) string {
		s, e := stringField(obj, name, "body.billingAddress")
		err = goa.MergeErrors(err, e)
		return s
	}

	address := &BillingAddress{
		Street:  field("street"),
		AptUnit: field("aptUnit"),
		City:    field("city"),
		State:   field("state"),
		ZipCode: field("zipCode"),
		Country: field("country"),
	}
	if country, present := obj["country"]; !present || country == nil {
		address.Country = DefaultCountry
	}
	if err != nil {
		return nil, err
	}
	return address, nil
}

// stringField reads a scalar as a string. Numbers and booleans are converted
// to their text form; null and missing keys read as "".
func stringField(obj map[string]any, name, context string) (string, error) {
	v, ok := obj[name]
	if !ok || v == nil {
		return "", nil
	}
	switch t := v.(type) {
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case bool:
		return strconv.FormatBool(t), nil
	default:
		return "", goa.InvalidFieldTypeError(context+"."+name, v, "string")
	}
}

func enumValues[T ~string](values []T) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
