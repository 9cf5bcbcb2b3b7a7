package addressbook

// IDCounterList tracks, per record kind, the highest ID ever handed out or
// observed. It only grows, so a deleted record's ID is never issued again.
type IDCounterList struct {
	Person int `json:"person"`
	Event  int `json:"event"`
}

// Merge returns the element-wise maximum of c and other.
func (c IDCounterList) Merge(other IDCounterList) IDCounterList {
	return IDCounterList{
		Person: max(c.Person, other.Person),
		Event:  max(c.Event, other.Event),
	}
}

func (c *IDCounterList) observePerson(id int) {
	c.Person = max(c.Person, id)
}

func (c *IDCounterList) observeEvent(id int) {
	c.Event = max(c.Event, id)
}
