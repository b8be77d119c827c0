package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docent-cli/internal/core/domain"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>...",
	Short: "Answer a question from the indexed documentation",
	Long: `Runs a planning completion that names topics and explicit lookups,
gathers the matching documents, and runs an answering completion over them.

The plan is printed before the reply: topics looked up, documents passed in,
forwarded hints and the cl100k_base tokens requested.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if askService == nil {
		return errors.New("ask service not configured")
	}

	question := strings.Join(args, " ")
	answer, err := askService.Ask(cmd.Context(), question)
	if answer != nil {
		printAnswerPlan(cmd, answer)
	}

	if errors.Is(err, domain.ErrEmptyReply) {
		cmd.Println(errorStyle.Render("No reply!"))
		cmd.Println()
		cmd.Println(warningStyle.Render(answer.Raw))
		return err
	}
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	cmd.Println()
	cmd.Println(answer.Reply)
	return nil
}

func printAnswerPlan(cmd *cobra.Command, answer *domain.Answer) {
	cmd.Println(titleStyle.Render("Will look up:"))
	for _, topic := range answer.Topics {
		cmd.Println(bullet(topicStyle, topic))
	}
	for _, d := range answer.Lookups {
		cmd.Println(bullet(topicStyle, d.Kind.String()+" "+d.Identifier))
	}

	cmd.Println()
	cmd.Println(titleStyle.Render("Will pass in:"))
	for _, doc := range answer.Documents {
		cmd.Println(bullet(pathStyle, doc.Path()))
	}

	cmd.Println()
	cmd.Println(titleStyle.Render("Will forward:"))
	for _, item := range answer.Relevant {
		cmd.Println(bullet(topicStyle, item))
	}

	cmd.Println()
	cmd.Printf("Requested tokens: %d\n", answer.RequestedTokens)
}
