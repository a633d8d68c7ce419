package main

import (
	"os"

	"github.com/doyaGu/libnmo-sub006"
	"github.com/spf13/cobra"
)

func newConvertCmd() *cobra.Command {
	var compress bool
	var strict bool

	cmd := &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Load a Nemo container and re-save it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(args[0], args[1], compress, strict)
		},
	}
	cmd.Flags().BoolVar(&compress, "compress", false, "compress Header1 and Data on save")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on any best-effort error instead of logging it")
	return cmd
}

func runConvert(in, out string, compress, strict bool) error {
	src, err := nmo.OpenReadOnly(in)
	if err != nil {
		return err
	}

	sess := nmo.NewSession(nil, nmo.Options{
		Logger: nmo.DefaultLogger(),
		Strict: strict,
	})
	if err := sess.Load(src); err != nil {
		src.Close()
		return err
	}
	if err := src.Close(); err != nil {
		return err
	}

	dst, err := nmo.OpenFile(out, os.O_CREATE|os.O_TRUNC|os.O_RDWR, fileMode())
	if err != nil {
		return err
	}

	writeMode := uint32(0)
	if compress {
		writeMode = nmo.WriteModeCompressHeader1 | nmo.WriteModeCompressData
	}
	cfg := nmo.SaveConfig{
		FileVersion:    sess.Header.FileVersion,
		CKVersion:      sess.Header.CKVersion,
		FileVersion2:   sess.Header.FileVersion2,
		ProductVersion: sess.Header.ProductVersion,
		ProductBuild:   sess.Header.ProductBuild,
		WriteMode:      writeMode,
	}
	if err := sess.Save(dst, cfg); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}
