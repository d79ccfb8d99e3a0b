package audio

import (
	"context"
	"fmt"
	"os/exec"
)

// SetVolume sets the ALSA master volume to percent.
func SetVolume(ctx context.Context, percent int) error {
	if percent < 0 || percent > 100 {
		return fmt.Errorf("volume %d not in 0-100", percent)
	}
	out, err := exec.CommandContext(ctx, "amixer", volumeArgs(percent)...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("amixer: %w: %s", err, out)
	}
	return nil
}

func volumeArgs(percent int) []string {
	return []string{"cset", "numid=1", "--", fmt.Sprintf("%d%%", percent)}
}
