package vocabfile

import (
	"math"
	"os"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/fractalnlp/tokengo/tokenizers/tokerr"
)

// SentencePieceEntry is one decoded entry of a SentencePiece ModelProto's
// piece list: a (piece_string, log_probability_float) record whose
// identifier is its position in the list.
type SentencePieceEntry struct {
	Piece string
	Score float32
	// Type mirrors ModelProto.SentencePiece.Type: 1=NORMAL (default),
	// 2=UNKNOWN, 3=CONTROL, 4=USER_DEFINED, 5=UNUSED, 6=BYTE.
	Type int32
}

// SentencePiece ModelProto field numbers (sentencepiece_model.proto):
// message ModelProto { repeated SentencePiece pieces = 1; ... }
// message SentencePiece { string piece = 1; float score = 2; Type type = 3; }
const (
	modelProtoFieldPieces = 1

	pieceFieldText  = 1
	pieceFieldScore = 2
	pieceFieldType  = 3
)

// LoadSentencePieceModel decodes the repeated SentencePiece field of a
// serialized ModelProto (a SentencePiece ".model" file) directly off the
// wire, without requiring a generated .pb.go for the full schema: every
// other ModelProto field (TrainerSpec, NormalizerSpec, self-test data) is
// immaterial to tokenization and is skipped unread.
func LoadSentencePieceModel(path string) ([]SentencePieceEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapOpenErr(path, err)
	}

	var pieces []SentencePieceEntry
	b := data
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, tokerr.New(tokerr.VocabularyParsing, "%q: malformed protobuf tag", path)
		}
		b = b[n:]

		if num != modelProtoFieldPieces || typ != protowire.BytesType {
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, tokerr.New(tokerr.VocabularyParsing, "%q: malformed protobuf field", path)
			}
			b = b[n:]
			continue
		}

		msg, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return nil, tokerr.New(tokerr.VocabularyParsing, "%q: malformed SentencePiece message", path)
		}
		b = b[n:]

		entry, err := decodeSentencePiece(msg)
		if err != nil {
			return nil, tokerr.Wrap(err, tokerr.VocabularyParsing, "%q: decoding piece %d", path, len(pieces))
		}
		pieces = append(pieces, entry)
	}
	return pieces, nil
}

func decodeSentencePiece(msg []byte) (SentencePieceEntry, error) {
	var entry SentencePieceEntry
	entry.Type = 1 // NORMAL, the proto3 default
	for len(msg) > 0 {
		num, typ, n := protowire.ConsumeTag(msg)
		if n < 0 {
			return entry, tokerr.New(tokerr.VocabularyParsing, "malformed field tag")
		}
		msg = msg[n:]

		switch {
		case num == pieceFieldText && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(msg)
			if n < 0 {
				return entry, tokerr.New(tokerr.VocabularyParsing, "malformed piece text")
			}
			entry.Piece = string(v)
			msg = msg[n:]
		case num == pieceFieldScore && typ == protowire.Fixed32Type:
			v, n := protowire.ConsumeFixed32(msg)
			if n < 0 {
				return entry, tokerr.New(tokerr.VocabularyParsing, "malformed piece score")
			}
			entry.Score = math.Float32frombits(v)
			msg = msg[n:]
		case num == pieceFieldType && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(msg)
			if n < 0 {
				return entry, tokerr.New(tokerr.VocabularyParsing, "malformed piece type")
			}
			entry.Type = int32(v)
			msg = msg[n:]
		default:
			skip := protowire.ConsumeFieldValue(num, typ, msg)
			if skip < 0 {
				return entry, tokerr.New(tokerr.VocabularyParsing, "malformed field value")
			}
			msg = msg[skip:]
		}
	}
	return entry, nil
}
