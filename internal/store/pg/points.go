package pg

import (
	"context"
	"fmt"

	"recylink.org/internal/community"
)

func (s *Store) ListCollectionPoints(ctx context.Context) ([]community.CollectionPoint, error) {
	rows, err := s.pool.Query(ctx, `
		select id_ponto, nome, endereco, tipo_residuo, latitude, longitude
		from ponto_coleta
		order by id_ponto asc
	`)
	if err != nil {
		return nil, fmt.Errorf("list collection points: %w", err)
	}
	defer rows.Close()

	points := []community.CollectionPoint{}
	for rows.Next() {
		var p community.CollectionPoint
		if err := rows.Scan(&p.ID, &p.Nome, &p.Endereco, &p.TipoResiduo, &p.Latitude, &p.Longitude); err != nil {
			return nil, fmt.Errorf("scan collection point: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list collection points: %w", err)
	}
	return points, nil
}
