package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zen-systems/imagegate/pkg/adapter"
	"github.com/zen-systems/imagegate/pkg/artifact"
	"github.com/zen-systems/imagegate/pkg/catalog"
	"github.com/zen-systems/imagegate/pkg/config"
	"github.com/zen-systems/imagegate/pkg/pipeline"
	"github.com/zen-systems/imagegate/pkg/refine"
	"github.com/zen-systems/imagegate/pkg/transport"
)

// familyOpenAISDK marks chain entries driven through the OpenAI SDK
// rather than a hand-built wire body. It needs gateway credentials, so
// it is assembled here instead of adapter.New.
const familyOpenAISDK = "openai_sdk"

// defaultGoogleModel is appended to the chain when a Google API key is
// configured.
const defaultGoogleModel = "imagen-3.0-generate-002"

// discoveryKeywords seed the chain from the gateway catalog when no
// providers are configured.
var discoveryKeywords = []string{"stable", "image", "titan"}

func main() {
	rootCmd := &cobra.Command{
		Use:   "imagegate",
		Short: "Generate images through a fallback chain of model providers",
		Long: `Imagegate sends an image prompt to a prioritized chain of backend
	model providers (a Bedrock-style gateway, native model formats, and
	vendor SDKs) and saves the first successful result as a PNG with a
	deterministic gallery name.`,
	}

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(modelsCmd())
	rootCmd.AddCommand(refineCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func generateCmd() *cobra.Command {
	var (
		modelFlag    string
		familyFlag   string
		widthFlag    int
		heightFlag   int
		countFlag    int
		negativeFlag string
		styleFlag    string
		outFlag      string
		refineFlag   bool
	)

	cmd := &cobra.Command{
		Use:   "generate [prompt]",
		Short: "Generate an image from a text prompt",
		Long: `Attempts each provider in the configured chain, in order, until one
	produces an image. Use --model to target a single provider, or rely on
	the configured chain (falling back to gateway model discovery).

	Use --refine to have Claude rewrite the prompt before generation.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.Join(args, " ")

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			gw := transport.NewGateway(cfg.BaseURL, cfg.Token, cfg.Timeout)

			if refineFlag {
				refiner, err := refine.NewRefiner(cfg.AnthropicAPIKey)
				if err != nil {
					return fmt.Errorf("refine unavailable: %w", err)
				}
				refined, err := refiner.Refine(cmd.Context(), prompt)
				if err != nil {
					return fmt.Errorf("refine prompt: %w", err)
				}
				log.Printf("refined prompt: %s", refined)
				prompt = refined
			}

			chain, err := buildChain(cmd.Context(), cfg, gw, modelFlag, familyFlag)
			if err != nil {
				return err
			}

			outDir := outFlag
			if outDir == "" {
				outDir = cfg.OutputDir
			}

			runner := pipeline.NewRunner(artifact.NewStore(outDir))
			runner.Logf = log.Printf

			result, err := runner.Generate(cmd.Context(), adapter.Request{
				Prompt:         prompt,
				NegativePrompt: negativeFlag,
				Style:          styleFlag,
				Width:          widthFlag,
				Height:         heightFlag,
				Count:          countFlag,
			}, chain)
			if err != nil {
				var exhausted *pipeline.ExhaustedError
				if errors.As(err, &exhausted) {
					fmt.Fprintln(os.Stderr, "Failed to generate image with any provider:")
					for _, outcome := range exhausted.Outcomes {
						fmt.Fprintf(os.Stderr, "  %s: %s\n", outcome.Provider, outcome.Reason)
					}
				}
				return err
			}

			fmt.Println(result.Primary.Path)
			for _, art := range result.Artifacts[1:] {
				fmt.Println(art.Path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&modelFlag, "model", "", "target a single provider/model identifier")
	cmd.Flags().StringVar(&familyFlag, "family", "", "wire family for --model (artifact_list, image_list, openai_data, openai_sdk)")
	cmd.Flags().IntVar(&widthFlag, "width", 0, "image width in pixels (default 1024)")
	cmd.Flags().IntVar(&heightFlag, "height", 0, "image height in pixels (default 1024)")
	cmd.Flags().IntVar(&countFlag, "count", 0, "number of images to request (default 1)")
	cmd.Flags().StringVar(&negativeFlag, "negative", "", "negative prompt")
	cmd.Flags().StringVar(&styleFlag, "style", "", "style preset")
	cmd.Flags().StringVar(&outFlag, "out", "", "output directory (default from config)")
	cmd.Flags().BoolVar(&refineFlag, "refine", false, "rewrite the prompt with Claude before generating")

	return cmd
}

func modelsCmd() *cobra.Command {
	var filterFlag string

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List models exposed by the gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			gw := transport.NewGateway(cfg.BaseURL, cfg.Token, cfg.Timeout)

			var ids []string
			if filterFlag != "" {
				ids, err = catalog.New(gw).Discover(cmd.Context(), filterFlag)
				if err != nil {
					return err
				}
			} else {
				models, err := gw.ListModels(cmd.Context())
				if err != nil {
					return err
				}
				for _, m := range models {
					ids = append(ids, m.ID)
				}
			}

			if len(ids) == 0 {
				fmt.Println("No models found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "MODEL\tFAMILY")
			for _, id := range ids {
				fmt.Fprintf(w, "%s\t%s\n", id, adapter.FamilyForModel(id))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&filterFlag, "filter", "", "case-insensitive substring filter")

	return cmd
}

func refineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refine [prompt]",
		Short: "Rewrite an image prompt with Claude",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			refiner, err := refine.NewRefiner(cfg.AnthropicAPIKey)
			if err != nil {
				return err
			}

			refined, err := refiner.Refine(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			fmt.Println(refined)
			return nil
		},
	}
}

// buildChain assembles the ordered adapter chain: an explicit --model
// beats the configured providers, which beat gateway discovery.
func buildChain(ctx context.Context, cfg *config.Config, gw transport.Invoker, model, family string) ([]adapter.Adapter, error) {
	var refs []config.ProviderRef

	switch {
	case model != "":
		if family == "" {
			family = string(adapter.FamilyForModel(model))
		}
		refs = []config.ProviderRef{{ID: model, Family: family}}
	case len(cfg.Providers) > 0:
		refs = cfg.Providers
	default:
		ids, err := catalog.New(gw).DiscoverAny(ctx, discoveryKeywords...)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return nil, fmt.Errorf("no candidate providers: gateway lists no matching models")
		}
		for _, id := range ids {
			refs = append(refs, config.ProviderRef{ID: id, Family: string(adapter.FamilyForModel(id))})
		}
	}

	chain := make([]adapter.Adapter, 0, len(refs)+1)
	for _, ref := range refs {
		if ref.Family == familyOpenAISDK {
			ad, err := adapter.NewOpenAIAdapter(cfg.BaseURL, cfg.Token, ref.ID)
			if err != nil {
				return nil, err
			}
			chain = append(chain, ad)
			continue
		}
		ad, err := adapter.New(adapter.ProviderSpec{
			ID:      ref.ID,
			Family:  adapter.Family(ref.Family),
			Invoker: gw,
		})
		if err != nil {
			return nil, err
		}
		chain = append(chain, ad)
	}

	// Out-of-gateway fallback when Google credentials are present and
	// the caller did not pin a single model.
	if model == "" && cfg.GoogleAPIKey != "" {
		ad, err := adapter.NewGoogleAdapter(ctx, cfg.GoogleAPIKey, defaultGoogleModel)
		if err != nil {
			log.Printf("skipping google adapter: %v", err)
		} else {
			chain = append(chain, ad)
		}
	}

	return chain, nil
}
