package domain

// ApplyNodePayload validates the present fields of a partial payload and
// copies them onto the node. supplier_id and level are handled by the
// caller; debt_to_supplier is applied only when the caller left it in the
// payload.
func ApplyNodePayload(n *NetworkNode, p map[string]any) error {
	if err := ValidateNodePayload(p); err != nil {
		return err
	}

	for key, v := range p {
		if v == nil {
			continue
		}
		switch key {
		case "name":
			n.Name, _ = v.(string)
		case "node_type":
			n.NodeType, _ = v.(string)
		case "email":
			n.Email, _ = v.(string)
		case "phone":
			s, err := stringField("phone", v)
			if err != nil {
				return err
			}
			normalized, err := NormalizeNodePhone(s)
			if err != nil {
				return err
			}
			n.Phone = normalized
		case "country":
			n.Country, _ = v.(string)
		case "city":
			n.City, _ = v.(string)
		case "street":
			n.Street, _ = v.(string)
		case "house_number":
			n.HouseNumber, _ = v.(string)
		case "debt_to_supplier":
			f, err := numericField("debt_to_supplier", v)
			if err != nil {
				return err
			}
			n.DebtToSupplier = f
		}
	}

	return nil
}

// SupplierIDFromPayload extracts supplier_id from a partial payload.
// present reports whether the key appeared at all; a JSON null yields
// present with a nil id, which clears the supplier.
func SupplierIDFromPayload(p map[string]any) (id *int64, present bool, err error) {
	v, ok := p["supplier_id"]
	if !ok {
		return nil, false, nil
	}
	if v == nil {
		return nil, true, nil
	}
	i, err := integerField("supplier_id", v)
	if err != nil {
		return nil, true, err
	}
	return &i, true, nil
}
