package book

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// OrderbookSnapshot contains the full state of a single Orderbook. The
// immutable deployment parameters travel with it so a restore into a
// differently configured book can be rejected.
type OrderbookSnapshot struct {
	BookID       string          `json:"book_id"`
	SeqID        uint64          `json:"seq_id"`
	ContractSize uint64          `json:"contract_size"`
	PriceTick    uint64          `json:"price_tick"`
	TradedFees   uint64          `json:"traded_fees"`
	BaseFees     uint64          `json:"base_fees"`
	Sells        []LevelSnapshot `json:"sells"`
	Buys         []LevelSnapshot `json:"buys"`
}

// LevelSnapshot is one price level with its live orders. Tombstoned orders
// are omitted; LastOrderID preserves id monotonicity across the gap.
type LevelSnapshot struct {
	Price             uint64          `json:"price"`
	LastOrderID       uint64          `json:"last_order_id"`
	LastActualOrderID uint64          `json:"last_actual_order_id"`
	TotalPlaced       uint64          `json:"total_placed"`
	TotalFilled       uint64          `json:"total_filled"`
	Orders            []OrderSnapshot `json:"orders"`
}

type OrderSnapshot struct {
	ID           uint64 `json:"id"`
	Owner        uint32 `json:"owner"`
	Amount       uint64 `json:"amount"`
	Claimed      uint64 `json:"claimed"`
	PlacedBefore uint64 `json:"placed_before"`
	Prev         uint64 `json:"prev"`
	Next         uint64 `json:"next"`
}

// SnapshotMetadata holds the global metadata for a snapshot (stored in metadata.json).
type SnapshotMetadata struct {
	SchemaVersion    int    `json:"schema_version"`
	Timestamp        int64  `json:"timestamp"`         // Unix nano
	EngineVersion    string `json:"engine_version"`    // Engine version
	SnapshotChecksum uint32 `json:"snapshot_checksum"` // CRC32 of the entire snapshot.bin file
}

// SnapshotFileFooter is the footer structure stored at the end of snapshot.bin.
// Layout: [BinaryData...][FooterJSON][FooterLength(4 bytes)]
type SnapshotFileFooter struct {
	Books []BookSegment `json:"books"`
}

// BookSegment contains metadata for one book's data within snapshot.bin.
type BookSegment struct {
	BookID   string `json:"book_id"`
	Offset   int64  `json:"offset"`
	Length   int64  `json:"length"`
	Checksum uint32 `json:"checksum"` // CRC32 of this segment
}

// Snapshot serializes the full book state. It must not run concurrently with
// trading calls; the book is strictly serialized per call and unsynchronized.
func (b *Orderbook) Snapshot() *OrderbookSnapshot {
	return &OrderbookSnapshot{
		BookID:       b.id,
		SeqID:        b.seqID,
		ContractSize: b.contractSize,
		PriceTick:    b.priceTick,
		TradedFees:   b.fees.traded,
		BaseFees:     b.fees.base,
		Sells:        snapshotSide(b.sells),
		Buys:         snapshotSide(b.buys),
	}
}

func snapshotSide(s *bookSide) []LevelSnapshot {
	levels := make([]LevelSnapshot, 0, len(s.points))
	for _, pp := range s.points {
		level := LevelSnapshot{
			Price:             pp.price,
			LastOrderID:       pp.lastID,
			LastActualOrderID: pp.lastActual,
			TotalPlaced:       pp.totalPlaced,
			TotalFilled:       pp.totalFilled,
			Orders:            make([]OrderSnapshot, 0, len(pp.orders)),
		}
		for id, o := range pp.orders {
			level.Orders = append(level.Orders, OrderSnapshot{
				ID:           id,
				Owner:        o.owner,
				Amount:       o.amount,
				Claimed:      o.claimed,
				PlacedBefore: o.placedBefore,
				Prev:         o.prev,
				Next:         o.next,
			})
		}
		sort.Slice(level.Orders, func(i, j int) bool { return level.Orders[i].ID < level.Orders[j].ID })
		levels = append(levels, level)
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i].Price < levels[j].Price })
	return levels
}

// Restore resets the book state from a snapshot. The book must have been
// created with the same instance id and deployment parameters; the
// collaborators (assets, address book, treasury) are not serializable and
// come from the live configuration.
func (b *Orderbook) Restore(snap *OrderbookSnapshot) error {
	if snap.BookID != b.id {
		return ErrBookNotFound
	}
	if snap.ContractSize != b.contractSize || snap.PriceTick != b.priceTick {
		return errors.New("snapshot deployment parameters do not match the book")
	}

	b.seqID = snap.SeqID
	b.fees.traded = snap.TradedFees
	b.fees.base = snap.BaseFees
	b.sells = restoreSide(Sell, snap.Sells)
	b.buys = restoreSide(Buy, snap.Buys)
	return nil
}

func restoreSide(side Side, levels []LevelSnapshot) *bookSide {
	s := newBookSide(side)
	for _, level := range levels {
		pp := newPricePoint(level.Price)
		pp.lastID = level.LastOrderID
		pp.lastActual = level.LastActualOrderID
		pp.totalPlaced = level.TotalPlaced
		pp.totalFilled = level.TotalFilled
		for _, o := range level.Orders {
			pp.orders[o.ID] = &order{
				owner:        o.Owner,
				amount:       o.Amount,
				claimed:      o.Claimed,
				placedBefore: o.PlacedBefore,
				prev:         o.Prev,
				next:         o.Next,
			}
		}
		s.points[level.Price] = pp
		if pp.available() > 0 {
			s.ladder.insert(level.Price)
		}
	}
	return s
}

// TakeSnapshot captures a consistent snapshot of all registered books and
// writes them to the specified directory: `snapshot.bin` (per-book JSON
// segments, footer index, footer length) and `metadata.json`. The directory
// is replaced atomically via a temp directory. It must not run concurrently
// with trading calls.
func (e *Exchange) TakeSnapshot(outputDir string) (*SnapshotMetadata, error) {
	tmpDir := outputDir + ".tmp"
	if err := os.RemoveAll(tmpDir); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(tmpDir, 0755); err != nil {
		return nil, err
	}

	binPath := filepath.Join(tmpDir, "snapshot.bin")
	binFile, err := os.Create(binPath)
	if err != nil {
		return nil, err
	}

	segments := make([]BookSegment, 0)
	currentOffset := int64(0)

	for _, b := range e.Books() {
		data, err := json.Marshal(b.Snapshot())
		if err != nil {
			binFile.Close()
			return nil, err
		}

		n, err := binFile.Write(data)
		if err != nil {
			binFile.Close()
			return nil, err
		}

		segments = append(segments, BookSegment{
			BookID:   b.ID(),
			Offset:   currentOffset,
			Length:   int64(n),
			Checksum: crc32.ChecksumIEEE(data),
		})
		currentOffset += int64(n)
	}

	footer := SnapshotFileFooter{Books: segments}
	footerData, err := json.Marshal(footer)
	if err != nil {
		binFile.Close()
		return nil, err
	}
	if _, err := binFile.Write(footerData); err != nil {
		binFile.Close()
		return nil, err
	}

	if len(footerData) > 4294967295 {
		binFile.Close()
		return nil, errors.New("footer too large")
	}
	//nolint:gosec // Verified length above
	footerLen := uint32(len(footerData))
	if err := binary.Write(binFile, binary.BigEndian, footerLen); err != nil {
		binFile.Close()
		return nil, err
	}

	if err := binFile.Sync(); err != nil {
		binFile.Close()
		return nil, err
	}
	if err := binFile.Close(); err != nil {
		return nil, err
	}

	snapshotChecksum, err := calculateFileCRC32(binPath)
	if err != nil {
		return nil, err
	}

	meta := &SnapshotMetadata{
		SchemaVersion:    SnapshotSchemaVersion,
		Timestamp:        time.Now().UnixNano(),
		EngineVersion:    EngineVersion,
		SnapshotChecksum: snapshotChecksum,
	}

	metaBytes, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "metadata.json"), metaBytes, 0600); err != nil {
		return nil, err
	}

	if err := os.RemoveAll(outputDir); err != nil {
		return nil, err
	}
	if err := os.Rename(tmpDir, outputDir); err != nil {
		return nil, err
	}

	return meta, nil
}

// RestoreFromSnapshot restores every book found in the snapshot directory.
// The books must already be registered (recreated with their collaborators
// and attached); a segment for an unknown book id is an error.
func (e *Exchange) RestoreFromSnapshot(inputDir string) (*SnapshotMetadata, error) {
	metaBytes, err := os.ReadFile(filepath.Join(inputDir, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta SnapshotMetadata
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		return nil, err
	}

	binPath := filepath.Join(inputDir, "snapshot.bin")
	binFile, err := os.Open(binPath)
	if err != nil {
		return nil, err
	}
	defer binFile.Close()

	fileChecksum, err := calculateFileCRC32(binPath)
	if err != nil {
		return nil, err
	}
	if fileChecksum != meta.SnapshotChecksum {
		return nil, errors.New("snapshot.bin checksum mismatch")
	}

	stat, err := binFile.Stat()
	if err != nil {
		return nil, err
	}
	fileSize := stat.Size()

	footerLenBytes := make([]byte, 4)
	if _, err := binFile.ReadAt(footerLenBytes, fileSize-4); err != nil {
		return nil, err
	}
	footerLen := binary.BigEndian.Uint32(footerLenBytes)

	footerBytes := make([]byte, footerLen)
	if _, err := binFile.ReadAt(footerBytes, fileSize-4-int64(footerLen)); err != nil {
		return nil, err
	}

	var footer SnapshotFileFooter
	if err := json.Unmarshal(footerBytes, &footer); err != nil {
		return nil, err
	}

	for _, segment := range footer.Books {
		segmentData := make([]byte, segment.Length)
		if _, err := binFile.ReadAt(segmentData, segment.Offset); err != nil {
			return nil, err
		}
		if crc32.ChecksumIEEE(segmentData) != segment.Checksum {
			return nil, errors.New("checksum mismatch for book " + segment.BookID)
		}

		var snap OrderbookSnapshot
		if err := json.Unmarshal(segmentData, &snap); err != nil {
			return nil, err
		}

		b := e.Orderbook(segment.BookID)
		if b == nil {
			return nil, ErrBookNotFound
		}
		if err := b.Restore(&snap); err != nil {
			return nil, err
		}
	}

	return &meta, nil
}

// calculateFileCRC32 computes the CRC32 (IEEE) checksum of a file.
func calculateFileCRC32(path string) (uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	h := crc32.NewIEEE()
	if _, err := io.Copy(h, f); err != nil {
		return 0, err
	}
	return h.Sum32(), nil
}
