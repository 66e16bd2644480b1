package scene

import (
	"strconv"
	"strings"

	apperrors "github.com/odvcencio/earthcontrol/pkg/errors"
)

// RGB is a colour with channels in [0, 1].
type RGB [3]float32

// ParseHex reads a #rrggbb colour.
func ParseHex(hex string) (RGB, error) {
	s := strings.TrimPrefix(hex, "#")
	if len(s) != 6 {
		return RGB{}, apperrors.Newf(apperrors.ErrCodeInvalidInput, "colour %q is not #rrggbb", hex)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, "parse colour").WithContext("colour", hex)
	}
	return RGB{
		float32(v>>16&0xff) / 255,
		float32(v>>8&0xff) / 255,
		float32(v&0xff) / 255,
	}, nil
}
