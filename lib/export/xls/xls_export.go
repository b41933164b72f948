package xlsexport

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	dbmodels "travel-tools-backend/models/db"
)

type Provider interface {
	ExportTravelRequestList(list []dbmodels.TravelRequest) (*bytes.Buffer, error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{}
}

type impl struct{}

var travelRequestHeaders = []string{"Номер", "Сотрудник", "Маршрут", "Дата вылета", "Дата возврата", "Путешественников", "Бюджет", "Статус", "Отправлена", "Закрыта"}

func (i impl) ExportTravelRequestList(list []dbmodels.TravelRequest) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.WithError(err).Error("ошибка закрытия файла")
		}
	}()
	sheet := "Sheet1"
	row := 0
	row, err := writeHeader(f, sheet, row, travelRequestHeaders)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка формирования заголовка в xlsx")
	}
	if len(list) != 0 {
		row, err = writeTravelRequestData(f, sheet, list, row)
		if err != nil {
			return nil, errors.Wrap(err, "ошибка формирования таблицы с данными в xlsx")
		}
	}
	f.SetSheetName(sheet, "Заявки на поездки")
	return f.WriteToBuffer()
}

func writeTravelRequestData(f *excelize.File, sheet string, list []dbmodels.TravelRequest, row int) (int, error) {
	if err := applyDataCellStyle(f, sheet, 1, row+1, len(travelRequestHeaders), len(list)+1); err != nil {
		return row, err
	}
	for _, item := range list {
		row++
		// "Номер"
		col := 1
		if err := writeColumn(f, sheet, col, row, item.Reference); err != nil {
			return row, err
		}

		// "Сотрудник"
		col++
		if item.Employee != nil {
			if err := writeColumn(f, sheet, col, row, item.Employee.GetDisplayName()); err != nil {
				return row, err
			}
		}

		// "Маршрут"
		col++
		if err := writeColumn(f, sheet, col, row, fmt.Sprintf("%v - %v", item.Origin, item.Destination)); err != nil {
			return row, err
		}

		// "Дата вылета"
		col++
		if item.DepartureDate != nil {
			if err := writeColumn(f, sheet, col, row, item.DepartureDate.Format("02.01.2006")); err != nil {
				return row, err
			}
		}

		// "Дата возврата"
		col++
		if item.ReturnDate != nil {
			if err := writeColumn(f, sheet, col, row, item.ReturnDate.Format("02.01.2006")); err != nil {
				return row, err
			}
		}

		// "Путешественников"
		col++
		if err := writeColumn(f, sheet, col, row, item.TravelerCount); err != nil {
			return row, err
		}

		// "Бюджет"
		col++
		if item.BudgetMinor != nil {
			budget := fmt.Sprintf("%.2f %v", float64(*item.BudgetMinor)/100, item.Currency)
			if err := writeColumn(f, sheet, col, row, budget); err != nil {
				return row, err
			}
		}

		// "Статус"
		col++
		if err := writeColumn(f, sheet, col, row, item.Status.ToHuman()); err != nil {
			return row, err
		}

		// "Отправлена"
		col++
		if item.SubmittedAt != nil {
			if err := writeColumn(f, sheet, col, row, item.SubmittedAt.Format("02.01.2006 15:04")); err != nil {
				return row, err
			}
		}

		// "Закрыта"
		col++
		closedAt := item.ApprovedAt
		if item.RejectedAt != nil {
			closedAt = item.RejectedAt
		}
		if item.CancelledAt != nil {
			closedAt = item.CancelledAt
		}
		if closedAt != nil {
			if err := writeColumn(f, sheet, col, row, closedAt.Format("02.01.2006 15:04")); err != nil {
				return row, err
			}
		}
	}
	return row, nil
}
