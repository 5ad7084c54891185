package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"pkt.systems/pslog"

	"pkt.systems/grove/client"
)

func newUploadCommand(v *viper.Viper, logger pslog.Logger) *cobra.Command {
	var (
		aclFlag     string
		contentType string
		index       bool
		wait        bool
	)
	cmd := &cobra.Command{
		Use:   "upload <path> [path...]",
		Short: "Upload one file, or several as a folder",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := buildClient(v, logger)
			if err != nil {
				return err
			}
			acl, err := parseACLFlag(aclFlag, cli.ChainID())
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			files := make([]client.File, 0, len(args))
			var total int64
			closers := make([]*os.File, 0, len(args))
			defer func() {
				for _, f := range closers {
					_ = f.Close()
				}
			}()
			for _, path := range args {
				file, handle, err := openUpload(path, contentType)
				if err != nil {
					return err
				}
				closers = append(closers, handle)
				files = append(files, file)
				total += file.Size
			}

			if len(files) == 1 && !index {
				res, err := cli.UploadFile(ctx, files[0], client.UploadOptions{ACL: acl})
				if err != nil {
					return err
				}
				fmt.Printf("uploaded %s (%s)\n", res.URI, humanize.IBytes(uint64(total)))
				fmt.Printf("gateway: %s\n", res.GatewayURL)
				return waitIfRequested(ctx, cli, res.StorageKey, wait)
			}

			res, err := cli.UploadFolder(ctx, files, client.UploadFolderOptions{ACL: acl, Index: index})
			if err != nil {
				return err
			}
			fmt.Printf("uploaded folder %s (%d files, %s)\n", res.Folder.URI, len(res.Files), humanize.IBytes(uint64(total)))
			for i, fileRes := range res.Files {
				fmt.Printf("  %s  %s\n", fileRes.URI, filepath.Base(args[i]))
			}
			return waitIfRequested(ctx, cli, res.Folder.StorageKey, wait)
		},
	}
	cmd.Flags().StringVar(&aclFlag, "acl", "", "access policy: immutable (default), wallet:<address>, or lens:<account>")
	cmd.Flags().StringVar(&contentType, "content-type", "", "force a content type instead of inferring from extensions")
	cmd.Flags().BoolVar(&index, "index", false, "upload as a folder with a default index.json manifest")
	cmd.Flags().BoolVar(&wait, "wait", false, "block until the backend reports the upload propagated")
	return cmd
}

func openUpload(path, forcedType string) (client.File, *os.File, error) {
	handle, err := os.Open(path)
	if err != nil {
		return client.File{}, nil, err
	}
	info, err := handle.Stat()
	if err != nil {
		_ = handle.Close()
		return client.File{}, nil, err
	}
	contentType := forcedType
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(path))
	}
	return client.File{
		Name:        filepath.Base(path),
		ContentType: contentType,
		Content:     handle,
		Size:        info.Size(),
	}, handle, nil
}

func newAllocateCommand(v *viper.Viper, logger pslog.Logger) *cobra.Command {
	var amount int
	cmd := &cobra.Command{
		Use:   "allocate",
		Short: "Reserve storage keys without uploading",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := buildClient(v, logger)
			if err != nil {
				return err
			}
			resources, err := cli.Allocate(cmd.Context(), amount)
			if err != nil {
				return err
			}
			for _, res := range resources {
				fmt.Println(res.URI)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&amount, "amount", "n", 1, "number of storage keys to reserve")
	return cmd
}

func newResolveCommand(v *viper.Viper, logger pslog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <key-or-uri>",
		Short: "Print the canonical URI and gateway URL for a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := buildClient(v, logger)
			if err != nil {
				return err
			}
			res, err := cli.Resolve(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("uri:     %s\ngateway: %s\n", res.URI, res.GatewayURL)
			return nil
		},
	}
}

func newStatusCommand(v *viper.Viper, logger pslog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "status <key-or-uri>",
		Short: "Show the backend's propagation status for a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := buildClient(v, logger)
			if err != nil {
				return err
			}
			status, err := cli.Status(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s  %s  %.0f%%\n", status.StorageKey, status.Status, status.Progress)
			return nil
		},
	}
}

func newWaitCommand(v *viper.Viper, logger pslog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "wait <key-or-uri>",
		Short: "Block until a resource finishes propagating",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := buildClient(v, logger)
			if err != nil {
				return err
			}
			return waitIfRequested(cmd.Context(), cli, args[0], true)
		},
	}
}

func newEditCommand(v *viper.Viper, logger pslog.Logger) *cobra.Command {
	var (
		aclFlag     string
		contentType string
		signExec    string
		wait        bool
	)
	cmd := &cobra.Command{
		Use:   "edit <key-or-uri> <path>",
		Short: "Replace the content of a mutable resource",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := buildClient(v, logger)
			if err != nil {
				return err
			}
			acl, err := parseACLFlag(aclFlag, cli.ChainID())
			if err != nil {
				return err
			}
			signer, err := signerFromFlag(signExec)
			if err != nil {
				return err
			}
			file, handle, err := openUpload(args[1], contentType)
			if err != nil {
				return err
			}
			defer handle.Close()
			res, err := cli.EditFile(cmd.Context(), args[0], file, signer, client.UploadOptions{ACL: acl})
			if err != nil {
				return err
			}
			fmt.Printf("edited %s (%s)\n", res.URI, humanize.IBytes(uint64(file.Size)))
			return waitIfRequested(cmd.Context(), cli, res.StorageKey, wait)
		},
	}
	cmd.Flags().StringVar(&aclFlag, "acl", "", "access policy to attach to the new content")
	cmd.Flags().StringVar(&contentType, "content-type", "", "force a content type instead of inferring from the extension")
	cmd.Flags().StringVar(&signExec, "sign-exec", "", "command that reads the challenge message on stdin and prints the signature")
	cmd.Flags().BoolVar(&wait, "wait", false, "block until the backend reports the edit propagated")
	return cmd
}

func newDeleteCommand(v *viper.Viper, logger pslog.Logger) *cobra.Command {
	var signExec string
	cmd := &cobra.Command{
		Use:   "delete <key-or-uri>",
		Short: "Delete a mutable resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := buildClient(v, logger)
			if err != nil {
				return err
			}
			signer, err := signerFromFlag(signExec)
			if err != nil {
				return err
			}
			if err := cli.Delete(cmd.Context(), args[0], signer); err != nil {
				return err
			}
			fmt.Printf("deleted %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&signExec, "sign-exec", "", "command that reads the challenge message on stdin and prints the signature")
	return cmd
}

func signerFromFlag(signExec string) (client.Signer, error) {
	signExec = strings.TrimSpace(signExec)
	if signExec == "" {
		return nil, fmt.Errorf("mutations require --sign-exec to produce challenge signatures")
	}
	return execSigner(signExec), nil
}
