// Package inspect implements the inspect subcommand: load a plugin module
// and print its factory and class information, then run a full lifecycle
// pass without opening devices. Bus information appears only in the debug
// log written during loading.
package inspect

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tphakala/plughost/internal/conf"
	"github.com/tphakala/plughost/internal/plugin"
	"github.com/tphakala/plughost/internal/vst3"
)

// Command returns the inspect subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [module path]",
		Short: "Load a plugin module and print its factory and class info",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0])
		},
	}
}

func run(path string) error {
	module, err := vst3.OpenModule(path)
	if err != nil {
		return err
	}
	factory, err := module.Factory()
	if err != nil {
		_ = module.Close()
		return err
	}

	if info, err := factory.FactoryInfo(); err == nil {
		fmt.Printf("Vendor: %s\n", vst3.CFieldString(info.Vendor[:]))
		fmt.Printf("URL:    %s\n", vst3.CFieldString(info.URL[:]))
		fmt.Printf("Email:  %s\n", vst3.CFieldString(info.Email[:]))
	}

	count := factory.CountClasses()
	fmt.Printf("Classes: %d\n", count)
	for i := int32(0); i < count; i++ {
		ci, err := factory.ClassInfo(i)
		if err != nil {
			fmt.Printf("  %d. <unreadable: %v>\n", i+1, err)
			continue
		}
		fmt.Printf("  %d. %s  [%s]  cid=%s\n", i+1, ci.Name, ci.Category, ci.CID)
	}
	factory.Release()
	if err := module.Close(); err != nil {
		return err
	}

	// A full lifecycle pass surfaces problems the factory dump cannot:
	// bus topology, controller linkage, processing setup.
	inst, err := plugin.Load(path, plugin.Config{})
	if err != nil {
		return fmt.Errorf("lifecycle check failed: %w", err)
	}
	fmt.Printf("\nLifecycle check: %s reached state %s\n", inst.ClassName, inst.State())
	inst.Drop()
	return nil
}
