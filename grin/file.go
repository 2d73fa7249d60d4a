package grin

import (
	"os"

	"github.com/pkg/errors"
)

// EncodeFile compresses the file inPath into a new Grin file outPath.
func (c Codec) EncodeFile(inPath, outPath string) (stats Stats, err error) {
	in, err := os.Open(inPath)
	if err != nil {
		return Stats{}, errors.WithStack(err)
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return Stats{}, errors.WithStack(err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = errors.WithStack(closeErr)
		}
	}()

	stats, err = c.Encode(in, out)
	if err != nil {
		return Stats{}, err
	}
	c.logger().Debug("grinEncodeFile", "in", inPath, "out", outPath, "plain", stats.PlainBytes, "packed", stats.PackedBytes)
	return stats, nil
}

// DecodeFile decompresses the Grin file inPath into outPath.
// When decoding fails, outPath is removed rather than left half written.
func (c Codec) DecodeFile(inPath, outPath string) (stats Stats, err error) {
	in, err := os.Open(inPath)
	if err != nil {
		return Stats{}, errors.WithStack(err)
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return Stats{}, errors.WithStack(err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = errors.WithStack(closeErr)
		}
		if err != nil {
			if removeErr := os.Remove(outPath); removeErr != nil {
				c.logger().Warn("grinRemoveOutput", "path", outPath, "err", removeErr)
			}
		}
	}()

	stats, err = c.Decode(in, out)
	if err != nil {
		return Stats{}, err
	}
	c.logger().Debug("grinDecodeFile", "in", inPath, "out", outPath, "plain", stats.PlainBytes, "packed", stats.PackedBytes)
	return stats, nil
}

// EncodeFile compresses inPath into outPath using the default Codec.
func EncodeFile(inPath, outPath string) (Stats, error) {
	return defaultCodec.EncodeFile(inPath, outPath)
}

// DecodeFile decompresses inPath into outPath using the default Codec.
func DecodeFile(inPath, outPath string) (Stats, error) {
	return defaultCodec.DecodeFile(inPath, outPath)
}
