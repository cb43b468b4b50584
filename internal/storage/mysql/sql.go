package mysql

// Note: one placeholder group per record; see insertSnapshotRow.
const insertSnapshotsPrefix = "INSERT INTO review_snapshots\n" +
	"  (batch_id, url, source, name, rating, review_count, address, website, phone, distribution, reviews, written_at)\n" +
	"VALUES "

const insertSnapshotRow = "(?,?,?,?,?,?,?,?,?,?,?,?)"

// Rows of one batch in insertion (completion) order.
const listBatchSQL = `
SELECT
  url,
  source,
  name,
  rating,
  review_count,
  address,
  website,
  phone,
  distribution,
  reviews
FROM review_snapshots
WHERE batch_id = ?
ORDER BY id
`
