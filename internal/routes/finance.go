package routes

import (
	"ordem-servico/internal/authz"
	"ordem-servico/internal/controllers"
	"ordem-servico/pkg/middleware"

	"github.com/labstack/echo/v4"
)

func runFinanceRouter(
	secureGroup *echo.Group,
	accountCtrl *controllers.BankAccountController,
	financeCtrl *controllers.FinanceController,
	pagbankCtrl *controllers.PagBankController,
	authMW *middleware.AuthMiddleware,
) {
	read := authMW.RequirePermission(authz.FinanceRead)
	write := authMW.RequirePermission(authz.FinanceWrite)

	accounts := secureGroup.Group("/bank-accounts")
	{
		accounts.GET("", accountCtrl.GetAccounts, read)
		accounts.GET("/summary", accountCtrl.Summary, read)
		accounts.POST("", accountCtrl.CreateAccount, write)
		accounts.GET("/:id", accountCtrl.FindAccount, read)
		accounts.PUT("/:id", accountCtrl.UpdateAccount, write)
		accounts.DELETE("/:id", accountCtrl.DeleteAccount, write)
	}

	finance := secureGroup.Group("/finance")
	{
		finance.GET("", financeCtrl.GetTransactions, read)
		finance.POST("", financeCtrl.CreateTransaction, write)
		finance.GET("/summary", financeCtrl.Summary, read)
		finance.GET("/export", financeCtrl.Export, read)
		finance.GET("/order/:orderId", financeCtrl.ByOrder, read)
	}

	secureGroup.GET("/pagbank/status", pagbankCtrl.Status, read)
}
