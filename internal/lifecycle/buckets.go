package lifecycle

// Bucket names a display partition.
type Bucket string

const (
	BucketApplied  Bucket = "applied"
	BucketActive   Bucket = "active"
	BucketArchived Bucket = "archived"
)

// Buckets partitions a collection of applications.
type Buckets struct {
	Applied  []Application
	Active   []Application
	Archived []Application
}

// BucketOf returns the partition a belongs to. Anything that is neither
// closed nor Applied lands in Active, including unrecognised statuses.
func BucketOf(a Application) Bucket {
	switch {
	case a.Closed():
		return BucketArchived
	case a.Status == StatusApplied:
		return BucketApplied
	default:
		return BucketActive
	}
}

// Classify splits apps into the three buckets, keeping input order within
// each. A repeated id is placed once, at its first occurrence.
func Classify(apps []Application) Buckets {
	b := Buckets{
		Applied:  []Application{},
		Active:   []Application{},
		Archived: []Application{},
	}
	seen := make(map[string]struct{}, len(apps))
	for _, a := range apps {
		if _, dup := seen[a.ID]; dup {
			continue
		}
		seen[a.ID] = struct{}{}
		switch BucketOf(a) {
		case BucketArchived:
			b.Archived = append(b.Archived, a)
		case BucketApplied:
			b.Applied = append(b.Applied, a)
		default:
			b.Active = append(b.Active, a)
		}
	}
	return b
}

// Sorted returns a copy of b with every bucket ordered by key and dir.
func (b Buckets) Sorted(key SortKey, dir Direction) Buckets {
	return Buckets{
		Applied:  Sort(b.Applied, key, dir),
		Active:   Sort(b.Active, key, dir),
		Archived: Sort(b.Archived, key, dir),
	}
}
