package modbus

import "sort"

// Request is one planned contiguous read: quantity registers of
// registerType starting at startAddress.
type Request struct {
	RegisterType RegisterType
	StartAddress uint16
	Quantity     uint16
}

// PlanReads groups a selection of tag keys into a minimal sequence of
// contiguous-range read requests, honoring MaxModbusRegisters and the
// catalog's exclusion set (§4.5 step 3).
//
// Unknown keys and keys whose register number is excluded for its
// register type are silently discarded (step 1); the survivors are then
// sorted by (register_type, register_number) before coalescing (step 2).
func PlanReads(catalog *TagCatalog, tagKeys []string) []Request {
	selected := make([]Tag, 0, len(tagKeys))
	for _, key := range tagKeys {
		tag, ok := catalog.TagByKey(key)
		if !ok {
			continue
		}
		if catalog.IsExcluded(tag.RegisterType, tag.RegisterNumber) {
			continue
		}
		selected = append(selected, tag)
	}

	sort.SliceStable(selected, func(i, j int) bool { return tagLess(selected[i], selected[j]) })

	var requests []Request
	for _, tag := range selected {
		if len(requests) == 0 {
			requests = append(requests, Request{
				RegisterType: tag.RegisterType,
				StartAddress: tag.RegisterNumber,
				Quantity:     tag.RegisterLength,
			})
			continue
		}

		current := &requests[len(requests)-1]
		endOffset := max16(current.Quantity, (tag.RegisterNumber-current.StartAddress)+tag.RegisterLength)

		sameType := current.RegisterType == tag.RegisterType
		withinLimit := endOffset <= MaxModbusRegisters
		// A read request covers one contiguous range; a tag starting past
		// the current range's end would leave an unread gap, so it seals
		// a new request even when it would still fit under the 125 limit.
		contiguous := tag.RegisterNumber <= current.StartAddress+current.Quantity
		excludedInRange := catalog.rangeHasExcludedRegister(current.RegisterType, current.StartAddress, tag.RegisterNumber)

		if sameType && contiguous && withinLimit && !excludedInRange {
			current.Quantity = endOffset
		} else {
			requests = append(requests, Request{
				RegisterType: tag.RegisterType,
				StartAddress: tag.RegisterNumber,
				Quantity:     tag.RegisterLength,
			})
		}
	}

	return requests
}

func max16(a, b uint16) uint16 {
	if a > b {
		return a
	}
	return b
}

// rangeHasExcludedRegister reports whether any excluded register number of
// registerType falls in [first, last] (§9 note 4: the range being tested
// is the raw [start_address, tag.register_number] span, not extended by
// register_length).
func (c *TagCatalog) rangeHasExcludedRegister(registerType RegisterType, first, last uint16) bool {
	if first > last {
		first, last = last, first
	}
	for excluded := range c.excluded[registerType] {
		if excluded >= first && excluded <= last {
			return true
		}
	}
	return false
}
