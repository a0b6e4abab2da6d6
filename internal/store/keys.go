package store

// Key layout inside one entity prefix:
//
//	{prefix}{id}                              -> entity JSON
//	{prefix}idx:{index}:{value}               -> id  (unique index)
//	{prefix}idx:{index}:{value}:{id}          -> id  (multi index)
//
// IDs never contain ':' so multi-index prefix scans cannot bleed into
// neighbouring values.
const indexMarker = "idx:"

func primaryKey(prefix, id string) []byte {
	buf := make([]byte, 0, len(prefix)+len(id))
	buf = append(buf, prefix...)
	buf = append(buf, id...)
	return buf
}

func uniqueIndexKey(prefix, indexName, value string) []byte {
	buf := make([]byte, 0, len(prefix)+len(indexMarker)+len(indexName)+len(value)+1)
	buf = append(buf, prefix...)
	buf = append(buf, indexMarker...)
	buf = append(buf, indexName...)
	buf = append(buf, ':')
	buf = append(buf, value...)
	return buf
}

func multiIndexPrefix(prefix, indexName, value string) []byte {
	return append(uniqueIndexKey(prefix, indexName, value), ':')
}

func multiIndexKey(prefix, indexName, value, id string) []byte {
	return append(multiIndexPrefix(prefix, indexName, value), id...)
}

// compositeValue joins index value parts, e.g. a user id and a directory id.
func compositeValue(parts ...string) string {
	n := 0
	for _, p := range parts {
		n += len(p) + 1
	}
	buf := make([]byte, 0, n)
	for i, p := range parts {
		if i > 0 {
			buf = append(buf, '|')
		}
		buf = append(buf, p...)
	}
	return string(buf)
}
