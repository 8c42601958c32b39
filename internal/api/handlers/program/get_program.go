package program

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/iao-solana/internal/api"
	"github/chapool/iao-solana/internal/config"
	"github/chapool/iao-solana/internal/util"
)

type programResponse struct {
	ProgramID     string   `json:"programId"`
	ProgramName   string   `json:"programName"`
	WorkspaceName string   `json:"workspaceName"`
	Cluster       string   `json:"cluster"`
	RPCURL        string   `json:"rpcUrl"`
	Wallet        string   `json:"wallet"`
	Balance       uint64   `json:"balance"`
	StateAddress  *string  `json:"stateAddress"`
	Instructions  []string `json:"instructions"`
}

func GetProgramRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Program.GET("", getProgramHandler(s))
}

func getProgramHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		program := s.Program.Program()
		wallet := s.Program.Wallet()

		balance, err := s.Env.Client.Balance(ctx, wallet, program.Provider().Opts.Commitment)
		if err != nil {
			log.Debug().Err(err).Msg("Failed to get wallet balance")
			return err
		}

		instructions := make([]string, 0, len(program.IDL().Instructions))
		for _, ix := range program.IDL().Instructions {
			instructions = append(instructions, ix.Name)
		}

		cluster := s.Config.Program.Cluster
		if cluster == "" {
			cluster = config.ClusterName(s.Env.Client.URL())
		}

		res := programResponse{
			ProgramID:     program.ID().String(),
			ProgramName:   program.IDL().ProgramName(),
			WorkspaceName: s.Config.Program.WorkspaceName,
			Cluster:       cluster,
			RPCURL:        s.Env.Client.URL(),
			Wallet:        wallet.String(),
			Balance:       balance,
			Instructions:  instructions,
		}

		if state, err := s.StateAddress(); err == nil {
			addr := state.String()
			res.StateAddress = &addr
		}

		return c.JSON(http.StatusOK, res)
	}
}
