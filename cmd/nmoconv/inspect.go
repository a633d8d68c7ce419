package main

import (
	"fmt"

	"github.com/doyaGu/libnmo-sub006"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <in>",
		Short: "Print object descriptors, manager GUIDs, and resolver stats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(args[0])
		},
	}
}

func runInspect(in string) error {
	src, err := nmo.OpenReadOnly(in)
	if err != nil {
		return err
	}
	defer src.Close()

	sess := nmo.NewSession(nil, nmo.Options{Logger: nmo.DefaultLogger()})
	if err := sess.Load(src); err != nil {
		return err
	}

	fmt.Printf("file_version=%d ck_version=%d manager_count=%d object_count=%d max_id_saved=%d\n",
		sess.Header.FileVersion, sess.Header.CKVersion, sess.Header.ManagerCount,
		sess.Header.ObjectCount, sess.Header.MaxIDSaved)

	for _, m := range sess.Managers {
		fmt.Printf("manager guid=%s\n", m.GUID)
	}

	for i := 0; ; i++ {
		obj, ok := sess.Repository.ByIndex(i)
		if !ok {
			break
		}
		kind := "object"
		if obj.Chunk == nil {
			kind = "reference"
		}
		fmt.Printf("%s id=%d class=%d name=%q\n", kind, obj.ID, obj.ClassID, obj.Name)
	}

	fmt.Printf("resolved=%d unresolved=%d ambiguous=%d total=%d\n",
		sess.Stats.Resolved, sess.Stats.Unresolved, sess.Stats.Ambiguous, sess.Stats.Total)
	return nil
}
