package modbus

// TagMaster pairs a Master with a TagCatalog, offering tag-keyed batched
// reads on top of the planner (§4.5 "Batched read").
type TagMaster struct {
	*Master
	Catalog *TagCatalog
}

// NewTagMaster wraps master with a fresh, empty tag catalog.
func NewTagMaster(master *Master) *TagMaster {
	return &TagMaster{Master: master, Catalog: NewTagCatalog()}
}

// ReadTags plans requests for tagKeys, executes each against slaveID, and
// returns one RegisterBuffer per planned request.
func (t *TagMaster) ReadTags(slaveID uint8, tagKeys []string) ([]*RegisterBuffer, error) {
	requests := PlanReads(t.Catalog, tagKeys)
	buffers := make([]*RegisterBuffer, 0, len(requests))
	for _, req := range requests {
		buf := NewRegisterBuffer(req.StartAddress, req.RegisterType, req.Quantity)
		if err := t.Master.ReadInto(slaveID, buf.View()); err != nil {
			return nil, err
		}
		buffers = append(buffers, buf)
	}
	return buffers, nil
}

// ReadTagValue reads exactly the register span of the tag named by key and
// returns an undecoded view addressed from the tag's own register_number,
// so typed retrieval through the view's accessors is keyed by that number.
func (t *TagMaster) ReadTagValue(slaveID uint8, key string) (*RegisterBufferView, error) {
	tag, ok := t.Catalog.TagByKey(key)
	if !ok {
		return nil, &ArgumentError{Msg: "unknown tag key: " + key}
	}
	buf := NewRegisterBuffer(tag.RegisterNumber, tag.RegisterType, tag.RegisterLength)
	if err := t.Master.ReadInto(slaveID, buf.View()); err != nil {
		return nil, err
	}
	return buf.View(), nil
}
