package util

// IDMap interns strings, handing out dense ids in insertion order.
type IDMap struct {
	strToID map[string]int
	idToStr []string
}

func NewIdMap() IDMap {
	return IDMap{
		strToID: make(map[string]int),
		idToStr: make([]string, 0),
	}
}

func (m *IDMap) GetID(s string) int {
	if id, ok := m.strToID[s]; ok {
		return id
	}
	id := len(m.idToStr)
	m.strToID[s] = id
	m.idToStr = append(m.idToStr, s)
	return id
}

func (m *IDMap) GetStr(id int) (string, bool) {
	if id < 0 || id >= len(m.idToStr) {
		return "", false
	}
	return m.idToStr[id], true
}

func (m *IDMap) Len() int {
	return len(m.idToStr)
}

// Compact drops the lookup side of the map. GetID must not be called afterwards.
func (m *IDMap) Compact() {
	m.strToID = nil
	m.idToStr = m.idToStr[:len(m.idToStr):len(m.idToStr)]
}
