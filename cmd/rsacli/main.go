// Command rsacli is a command-line front-end for the rsacore library:
// key generation, hybrid encryption, and digital signatures over files or
// stdin/stdout.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/keyforge/rsacore"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "rsacli:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rsacli",
		Short:         "RSA key generation, hybrid encryption and signatures",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newKeygenCmd(),
		newEncryptCmd(),
		newDecryptCmd(),
		newSignCmd(),
		newVerifyCmd(),
		newInspectCmd(),
	)
	return root
}

func newKeygenCmd() *cobra.Command {
	var (
		bits     int
		exponent int64
		outDir   string
		verbose  bool
	)
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a keypair and write public.xml and private.xml",
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []rsacore.KeyGenOption
			opts = append(opts, rsacore.WithPublicExponent(exponent))
			if verbose {
				opts = append(opts, rsacore.WithTrace(func(ev rsacore.TraceEvent) {
					fmt.Fprintf(os.Stderr, "keygen: %s attempt=%d bits=%d\n", ev.Op, ev.Attempt, ev.Bits)
				}))
			}

			pair, err := rsacore.GenerateKeyPair(bits, opts...)
			if err != nil {
				return err
			}

			pubPath := filepath.Join(outDir, "public.xml")
			privPath := filepath.Join(outDir, "private.xml")
			if err := rsacore.SavePublicKey(pair.Public, pubPath); err != nil {
				return err
			}
			if err := rsacore.SavePrivateKey(pair.Private, privPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s and %s (%d-bit modulus)\n", pubPath, privPath, pair.Public.Bits())
			return nil
		},
	}
	cmd.Flags().IntVar(&bits, "bits", 2048, "modulus size in bits")
	cmd.Flags().Int64Var(&exponent, "exponent", rsacore.DefaultPublicExponent, "public exponent")
	cmd.Flags().StringVar(&outDir, "out", ".", "output directory")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "report generation progress on stderr")
	return cmd
}

func newEncryptCmd() *cobra.Command {
	var (
		keyPath  string
		signWith string
		inPath   string
		outPath  string
	)
	cmd := &cobra.Command{
		Use:   "encrypt",
		Short: "Seal data into a hybrid envelope for a recipient public key",
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, err := rsacore.LoadPublicKey(keyPath)
			if err != nil {
				return err
			}

			data, err := readInput(inPath)
			if err != nil {
				return err
			}

			var opts []rsacore.SealOption
			if signWith != "" {
				priv, err := rsacore.LoadPrivateKey(signWith)
				if err != nil {
					return err
				}
				opts = append(opts, rsacore.WithSigner(priv))
			}

			env, err := rsacore.EncryptHybrid(data, pub, opts...)
			if err != nil {
				return err
			}
			return writeOutput(outPath, env)
		},
	}
	cmd.Flags().StringVar(&keyPath, "key", "public.xml", "recipient public key file")
	cmd.Flags().StringVar(&signWith, "sign-with", "", "sender private key file (adds a signature)")
	cmd.Flags().StringVar(&inPath, "in", "", "input file (default stdin)")
	cmd.Flags().StringVar(&outPath, "out", "", "output file (default stdout)")
	return cmd
}

func newDecryptCmd() *cobra.Command {
	var (
		keyPath    string
		senderPath string
		noVerify   bool
		inPath     string
		outPath    string
	)
	cmd := &cobra.Command{
		Use:   "decrypt",
		Short: "Open a hybrid envelope with a recipient private key",
		RunE: func(cmd *cobra.Command, args []string) error {
			priv, err := rsacore.LoadPrivateKey(keyPath)
			if err != nil {
				return err
			}

			env, err := readInput(inPath)
			if err != nil {
				return err
			}

			var opts []rsacore.OpenOption
			if senderPath != "" {
				pub, err := rsacore.LoadPublicKey(senderPath)
				if err != nil {
					return err
				}
				opts = append(opts, rsacore.WithSenderPublicKey(pub))
			}
			if noVerify {
				opts = append(opts, rsacore.WithoutSignatureVerification())
			}

			opened, err := rsacore.DecryptHybrid(env, priv, opts...)
			if err != nil {
				return err
			}
			if opened.SignatureVerified {
				fmt.Fprintln(os.Stderr, "signature: verified")
			}
			return writeOutput(outPath, opened.Plaintext)
		},
	}
	cmd.Flags().StringVar(&keyPath, "key", "private.xml", "recipient private key file")
	cmd.Flags().StringVar(&senderPath, "sender", "", "sender public key file for signature verification")
	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "skip signature verification")
	cmd.Flags().StringVar(&inPath, "in", "", "input file (default stdin)")
	cmd.Flags().StringVar(&outPath, "out", "", "output file (default stdout)")
	return cmd
}

func newSignCmd() *cobra.Command {
	var (
		keyPath string
		inPath  string
	)
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign data and print the base64 signature",
		RunE: func(cmd *cobra.Command, args []string) error {
			priv, err := rsacore.LoadPrivateKey(keyPath)
			if err != nil {
				return err
			}
			data, err := readInput(inPath)
			if err != nil {
				return err
			}
			sig, err := rsacore.Sign(data, priv)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), rsacore.ToBase64(sig))
			return nil
		},
	}
	cmd.Flags().StringVar(&keyPath, "key", "private.xml", "private key file")
	cmd.Flags().StringVar(&inPath, "in", "", "input file (default stdin)")
	return cmd
}

func newVerifyCmd() *cobra.Command {
	var (
		keyPath string
		inPath  string
		sigB64  string
	)
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a base64 signature over data",
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, err := rsacore.LoadPublicKey(keyPath)
			if err != nil {
				return err
			}
			data, err := readInput(inPath)
			if err != nil {
				return err
			}
			sig, err := rsacore.FromBase64(sigB64)
			if err != nil {
				return fmt.Errorf("decode signature: %w", err)
			}

			if !rsacore.Verify(data, sig, pub) {
				fmt.Fprintln(cmd.OutOrStdout(), "signature: INVALID")
				os.Exit(1)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "signature: valid")
			return nil
		},
	}
	cmd.Flags().StringVar(&keyPath, "key", "public.xml", "public key file")
	cmd.Flags().StringVar(&inPath, "in", "", "input file (default stdin)")
	cmd.Flags().StringVar(&sigB64, "sig", "", "base64 signature")
	_ = cmd.MarkFlagRequired("sig")
	return cmd
}

func newInspectCmd() *cobra.Command {
	var private bool
	cmd := &cobra.Command{
		Use:   "inspect <keyfile>",
		Short: "Print key parameters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if private {
				priv, err := rsacore.LoadPrivateKey(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "private key: %d-bit modulus (%d-byte blocks)\n", priv.Bits(), priv.Size())
				return nil
			}
			pub, err := rsacore.LoadPublicKey(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "public key: %d-bit modulus (%d-byte blocks), e=%v\n", pub.Bits(), pub.Size(), pub.E)
			fmt.Fprintf(out, "max OAEP-SHA256 payload per block: %d bytes\n", rsacore.MaxMessageLen(pub.N))
			return nil
		},
	}
	cmd.Flags().BoolVar(&private, "private", false, "treat the file as a private key")
	return cmd
}

func readInput(path string) ([]byte, error) {
	if path == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
