// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/lavapop/lifecycle-analytics/pkg/engine"
	"github.com/lavapop/lifecycle-analytics/pkg/normalize"
	"github.com/sirupsen/logrus"

	_ "github.com/go-sql-driver/mysql"
)

var tablePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// MySQLSource loads the transaction snapshot from a mirrored POS table,
// for deployments where the exports land in a warehouse instead of files.
type MySQLSource struct {
	db    *sql.DB
	table string
}

// OpenMySQL opens a pooled connection from a mysql:// or mariadb:// DSN
// and wraps the given transactions table as a snapshot source.
func OpenMySQL(dsn, table string) (*MySQLSource, error) {
	if !tablePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	mysqlDSN, err := toMySQLDSN(dsn)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", mysqlDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql connection: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	return &MySQLSource{db: db, table: table}, nil
}

// Close releases the connection pool.
func (s *MySQLSource) Close() error {
	return s.db.Close()
}

// Load reads every mirrored transaction row. Values come back in the raw
// export shape; the normalizer owns all interpretation, same as for CSV.
func (s *MySQLSource) Load(ctx context.Context) (*engine.Snapshot, error) {
	q := fmt.Sprintf(`
		SELECT data_hora, doc_cliente, nome_cliente, telefone,
		       valor_venda, valor_pago, maquinas, meio_de_pagamento,
		       usou_cupom, codigo_cupom
		FROM %s
	`, s.table)

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("snapshot query failed: %w", err)
	}
	defer rows.Close()

	var raw []normalize.RawRow
	for rows.Next() {
		var dataHora, doc, nome, telefone, valorVenda, valorPago,
			maquinas, pagamento, usouCupom, codigoCupom sql.NullString

		if err := rows.Scan(&dataHora, &doc, &nome, &telefone, &valorVenda,
			&valorPago, &maquinas, &pagamento, &usouCupom, &codigoCupom); err != nil {
			return nil, fmt.Errorf("snapshot row scan failed: %w", err)
		}

		raw = append(raw, normalize.RawRow{
			"Data_Hora":         dataHora.String,
			"Doc_Cliente":       doc.String,
			"Nome_Cliente":      nome.String,
			"Telefone":          telefone.String,
			"Valor_Venda":       valorVenda.String,
			"Valor_Pago":        valorPago.String,
			"Maquinas":          maquinas.String,
			"Meio_de_Pagamento": pagamento.String,
			"Usou_Cupom":        usouCupom.String,
			"Codigo_Cupom":      codigoCupom.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("snapshot row iteration failed: %w", err)
	}

	logrus.Infof("loaded %d raw rows from table %s", len(raw), s.table)
	return &engine.Snapshot{Rows: raw}, nil
}

// toMySQLDSN converts mysql:// or mariadb:// URLs to the driver DSN
// format; plain driver DSNs pass through.
func toMySQLDSN(dsn string) (string, error) {
	if !strings.HasPrefix(dsn, "mysql://") && !strings.HasPrefix(dsn, "mariadb://") {
		return dsn, nil
	}

	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("failed to parse dsn: %w", err)
	}

	user := ""
	pass := ""
	if u.User != nil {
		user = u.User.Username()
		pass, _ = u.User.Password()
	}
	db := strings.TrimPrefix(u.Path, "/")
	if user == "" || u.Host == "" || db == "" {
		return "", fmt.Errorf("incomplete dsn: user, host and database are required")
	}

	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&interpolateParams=true",
		user, pass, u.Host, db), nil
}
