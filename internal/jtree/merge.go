package jtree

// Merge recursively merges src into dst. Keys present only in src are
// inserted (appended to dst's key order); keys present in both are merged
// recursively when both values are objects, otherwise src wins outright.
//
// dst is mutated in place. Inserted values are deep copies of the source,
// so later mutation of src never leaks into dst and vice versa.
func Merge(dst, src Object) {
	src.Range(func(key string, sv Value) bool {
		dv, exists := dst.Get(key)
		if exists {
			dObj, dIsObj := dv.(Object)
			sObj, sIsObj := sv.(Object)
			if dIsObj && sIsObj {
				Merge(dObj, sObj)
				return true
			}
		}
		dst.Set(key, Clone(sv))
		return true
	})
}
