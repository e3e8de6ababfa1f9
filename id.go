package stampcard

import "github.com/xraph/stampcard/id"

// ID is the primary identifier type for engine-minted Stampcard entities.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix
