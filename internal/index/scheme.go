package index

var (
	bMeta     = []byte("meta")      // id -> PostMeta json
	bWarn     = []byte("warnings")  // seq -> Warning json
	bInfo     = []byte("info")      // fixed keys below
	bIdxFresh = []byte("idx_fresh") // freshKey -> id
	bIdxCat   = []byte("idx_cat")   // category -> sub-bucket of freshKey -> id
	bIdxTag   = []byte("idx_tag")   // lower(tag) -> sub-bucket of freshKey -> id

	allBuckets = [][]byte{bMeta, bWarn, bInfo, bIdxFresh, bIdxCat, bIdxTag}

	kBuiltAt = []byte("built_at")
	kCount   = []byte("count")
)
