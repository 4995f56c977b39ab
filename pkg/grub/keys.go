package grub

import (
	"strings"

	"github.com/grubkit/grubkit/pkg/structures"
)

// recognizedKeys is the allow-list of GRUB configuration variables which
// owners may set, i.e. the variables documented for /etc/default/grub plus
// the Ubuntu-specific recordfail timeout.
var recognizedKeys = structures.NewSet(
	"GRUB_BACKGROUND",
	"GRUB_BADRAM",
	"GRUB_CMDLINE_LINUX",
	"GRUB_CMDLINE_LINUX_DEFAULT",
	"GRUB_DEFAULT",
	"GRUB_DISABLE_LINUX_PARTUUID",
	"GRUB_DISABLE_LINUX_UUID",
	"GRUB_DISABLE_OS_PROBER",
	"GRUB_DISABLE_RECOVERY",
	"GRUB_DISABLE_SUBMENU",
	"GRUB_DISTRIBUTOR",
	"GRUB_ENABLE_CRYPTODISK",
	"GRUB_GFXMODE",
	"GRUB_GFXPAYLOAD_LINUX",
	"GRUB_HIDDEN_TIMEOUT",
	"GRUB_HIDDEN_TIMEOUT_QUIET",
	"GRUB_INIT_TUNE",
	"GRUB_PRELOAD_MODULES",
	"GRUB_RECORDFAIL_TIMEOUT",
	"GRUB_SAVEDEFAULT",
	"GRUB_SERIAL_COMMAND",
	"GRUB_TERMINAL",
	"GRUB_TERMINAL_INPUT",
	"GRUB_TERMINAL_OUTPUT",
	"GRUB_TIMEOUT",
	"GRUB_TIMEOUT_STYLE",
	"GRUB_THEME",
)

// RecognizedKeys returns the allow-listed GRUB configuration variables in
// lexicographic order.
func RecognizedKeys() []string {
	return recognizedKeys.Sorted()
}

// CheckChanges rejects unknown keys and syntactically unusable values before
// any merge is attempted.
func CheckChanges(changes map[string]string) error {
	for key, value := range changes {
		if !recognizedKeys.Has(key) {
			return &ValidationError{
				Key:     key,
				Message: "not a recognized GRUB configuration variable",
			}
		}
		if strings.ContainsAny(value, "\n") {
			return &ValidationError{
				Key:     key,
				Message: "value must not contain newlines",
			}
		}
	}
	return nil
}
